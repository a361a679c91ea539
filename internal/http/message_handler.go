package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-aid/internal/service"
)

// MessageHandler expone la conversación de un caso.
type MessageHandler struct {
	logger   *zap.Logger
	messages *service.MessageService
}

func NewMessageHandler(logger *zap.Logger, messages *service.MessageService) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{logger: logger, messages: messages}
}

// ListMessages maneja GET /issues/:issueId/messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	list, err := h.messages.List(c.Request.Context(), c.Param("issueId"), claims.UserID)
	if err != nil {
		writeServiceError(c, h.logger, "list messages", err)
		return
	}

	status := "Messages fetched successfully."
	if !list.Started {
		status = "Start of conversation."
	}
	c.JSON(http.StatusOK, gin.H{"messages": list.Messages, "message": status})
}

// SendMessage maneja POST /issues/:issueId/messages.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), service.SendMessageInput{
		IssueID:    c.Param("issueId"),
		SenderID:   claims.UserID,
		SenderName: claims.FullName,
		Content:    req.Content,
	})
	if err != nil {
		writeServiceError(c, h.logger, "send message", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
