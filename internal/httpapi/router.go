package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
)

// NewRouter registers every endpoint. mode is a gin mode: debug, release or test.
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/healthz", func(c *gin.Context) { Success(c, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.GET("/transactions", h.ListTransactions)
		api.POST("/transactions", h.CreateTransaction)
		api.PATCH("/transactions/:id", h.UpdateTransaction)
		api.DELETE("/transactions/:id", h.DeleteTransaction)

		api.GET("/overview", h.Overview)
		api.GET("/breakdown/categories", h.CategoryBreakdown)
		api.GET("/breakdown/subcategories/:id", h.SubcategoryBreakdown)
		api.GET("/merchants", h.Merchants)
		api.GET("/trend", h.Trend)

		api.GET("/categories", h.Categories)
		api.GET("/mappings", h.Mappings)
		api.POST("/import", h.Import)
	}
	return r
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request handled",
			logging.F("method", c.Request.Method),
			logging.F("path", c.FullPath()),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
}
