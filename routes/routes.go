package routes

import (
	"senetic-sync/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes binds the HTTP surface. Legacy top-level paths are kept for
// the scheduled jobs that still call them.
func RegisterRoutes(r *gin.Engine, ic *controllers.ImportController) {
	r.GET("/senetic-inventory", ic.ShowInventory)
	r.GET("/senetic-catalogue", ic.ShowCatalogue)
	r.GET("/import-shopify", ic.TriggerImport)

	api := r.Group("/api")
	{
		api.POST("/import/trigger", ic.TriggerImport)
		api.GET("/import/jobs/:id", ic.GetJobStatus)
		api.GET("/health", ic.HealthCheck)
		api.GET("/status", ic.HealthCheck)
		api.GET("/products/count", ic.CountProducts)
	}
}
