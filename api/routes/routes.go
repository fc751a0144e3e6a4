package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/api/handlers"
	"github.com/feichai0017/ai-ready-data/api/middleware"
	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/metrics"
)

// SetupRoutes wires the public API, the admin surface and the operational
// endpoints.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, meter *billing.Meter, adminToken string, log logger.Logger) {
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(meter, log))

	docs := v1.Group("/documents")
	{
		docs.POST("/process", h.Document.ProcessDocument)
		docs.POST("/batch", h.Document.ProcessBatch)
		docs.GET("/status/:taskId", h.Document.GetStatus)
		docs.GET("/download/:taskId", h.Document.DownloadResult)
		docs.DELETE("/task/:taskId", h.Document.CancelTask)
		docs.GET("/types", h.Document.SupportedTypes)
	}

	v1.GET("/usage", h.Usage.GetUsage)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(adminToken))
	{
		admin.POST("/accounts", h.Admin.CreateAccount)
		admin.GET("/accounts/:credentialId", h.Admin.GetAccount)
		admin.PUT("/accounts/:credentialId/plan", h.Admin.SetPlan)
	}
}
