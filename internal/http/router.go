package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"legal-aid/internal/domain"
	"legal-aid/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	limiter service.SendRateLimiter,
	issueH *IssueHandler,
	messageH *MessageHandler,
	notificationH *NotificationHandler,
	wsH *WSHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := JWTAuthMiddleware(jwtSvc)

	// El websocket no lleva Content-Type JSON: la respuesta es el 101 del upgrade.
	r.GET("/ws", auth, wsH.Connect)

	api := r.Group("", jsonContentTypeMiddleware(), auth)

	issues := api.Group("/issues")
	issues.POST("", issueH.CreateIssue)
	issues.GET("", issueH.ListIssues)
	issues.GET("/:issueId", issueH.GetIssue)
	issues.PATCH("/:issueId/status", RequireRole(domain.RoleParalegal, domain.RoleAdmin), issueH.UpdateStatus)
	issues.POST("/:issueId/assign", RequireRole(domain.RoleAdmin), issueH.AssignParalegal)
	issues.POST("/:issueId/notes", issueH.AddNote)
	issues.POST("/:issueId/documents", issueH.AttachDocument)
	issues.DELETE("/:issueId", issueH.DeleteIssue)

	issues.GET("/:issueId/messages", messageH.ListMessages)
	issues.POST("/:issueId/messages", SendRateLimitMiddleware(limiter), messageH.SendMessage)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationH.ListNotifications)
	notifications.POST("/:id/read", notificationH.MarkRead)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
