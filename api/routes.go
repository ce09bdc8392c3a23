package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the engine with request logging and panic recovery.
func SetupRoutes(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.logger), gin.Recovery())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/train", h.Train)
		api.POST("/predict", h.Predict)
		api.POST("/evaluate", h.Evaluate)
		api.POST("/feedback", h.Feedback)
		api.GET("/dataset/stats", h.DatasetStats)
		api.GET("/model", h.Model)
	}
	return r
}
