package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-aid/internal/domain"
	"legal-aid/internal/service"
)

// IssueHandler mantiene dependencias para los endpoints de casos.
type IssueHandler struct {
	logger *zap.Logger
	issues *service.IssueService
}

func NewIssueHandler(logger *zap.Logger, issues *service.IssueService) *IssueHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueHandler{logger: logger, issues: issues}
}

// CreateIssue maneja POST /issues.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		IssueType   string `json:"issue_type" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create issue request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	issue, err := h.issues.Create(c.Request.Context(), service.CreateIssueInput{
		OwnerID:     claims.UserID,
		IssueType:   domain.IssueType(req.IssueType),
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(c, h.logger, "create issue", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"issue": issue})
}

// ListIssues maneja GET /issues.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	issues, err := h.issues.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		writeServiceError(c, h.logger, "list issues", err)
		return
	}
	if issues == nil {
		issues = []domain.LegalIssue{}
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// GetIssue maneja GET /issues/:issueId.
func (h *IssueHandler) GetIssue(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	issue, err := h.issues.Get(c.Request.Context(), c.Param("issueId"), callerFrom(claims))
	if err != nil {
		writeServiceError(c, h.logger, "get issue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// UpdateStatus maneja PATCH /issues/:issueId/status.
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	issue, err := h.issues.UpdateStatus(c.Request.Context(), c.Param("issueId"), domain.IssueStatus(req.Status), callerFrom(claims))
	if err != nil {
		writeServiceError(c, h.logger, "update status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// AssignParalegal maneja POST /issues/:issueId/assign (solo admin).
func (h *IssueHandler) AssignParalegal(c *gin.Context) {
	var req struct {
		ParalegalID string `json:"paralegal_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid assign request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	issue, err := h.issues.AssignParalegal(c.Request.Context(), c.Param("issueId"), req.ParalegalID)
	if err != nil {
		writeServiceError(c, h.logger, "assign paralegal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// AddNote maneja POST /issues/:issueId/notes.
func (h *IssueHandler) AddNote(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add note request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	issue, err := h.issues.AddNote(c.Request.Context(), c.Param("issueId"), req.Note, callerFrom(claims))
	if err != nil {
		writeServiceError(c, h.logger, "add note", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// AttachDocument maneja POST /issues/:issueId/documents.
func (h *IssueHandler) AttachDocument(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		DocumentID   string `json:"document_id" binding:"required"`
		DocumentType string `json:"document_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid attach document request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	issue, err := h.issues.AttachDocument(c.Request.Context(), c.Param("issueId"), req.DocumentID, req.DocumentType, callerFrom(claims))
	if err != nil {
		writeServiceError(c, h.logger, "attach document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// DeleteIssue maneja DELETE /issues/:issueId.
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.issues.Delete(c.Request.Context(), c.Param("issueId"), callerFrom(claims)); err != nil {
		writeServiceError(c, h.logger, "delete issue", err)
		return
	}
	c.Status(http.StatusNoContent)
}
