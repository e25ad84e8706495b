package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/handler"
	"github.com/jengzang/coolparks-go/internal/middleware"
	"github.com/jengzang/coolparks-go/internal/service"
	"github.com/jengzang/coolparks-go/pkg/metrics"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, runs *service.RunService, m *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(m))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CoolParks API is running",
		})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := handler.NewRunHandler(runs)
	api := r.Group("/api/v1", middleware.Auth(cfg.Server.JWTSecret))
	{
		rs := api.Group("/runs")
		{
			rs.POST("", middleware.RateLimit(cfg.Server.RateLimit, time.Minute), h.CreateRun)
			rs.GET("", h.ListRuns)
			rs.GET("/:id", h.GetRun)
			rs.DELETE("/:id", h.CancelRun)
			rs.GET("/:id/diagnostics", h.GetDiagnostics)
			rs.GET("/:id/weights", h.GetWeights)
			rs.GET("/:id/buildings", h.GetBuildings)
		}
	}

	return r
}
