package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/geolife-backend-go/internal/config"
	"github.com/jengzang/geolife-backend-go/internal/handler"
	"github.com/jengzang/geolife-backend-go/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, stats *handler.StatsHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Geolife API is running",
			"backend": cfg.StoreBackend,
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, time.Minute, nil)))
	if cfg.JWTSecret != "" {
		api.Use(middleware.Auth(cfg.JWTSecret))
	}
	{
		// 统计查询接口
		s := api.Group("/stats")
		{
			s.GET("/counts", stats.GetCounts)
			s.GET("/average-activities", stats.GetAverageActivities)
			s.GET("/top-users", stats.GetTopUsers)
			s.GET("/mode-users", stats.GetModeUsers)
			s.GET("/modes", stats.GetModes)
			s.GET("/busiest-year", stats.GetBusiestYear)
			s.GET("/distance", stats.GetDistance)
			s.GET("/altitude-gain", stats.GetAltitudeGain)
			s.GET("/invalid-activities", stats.GetInvalidActivities)
			s.GET("/nearby", stats.GetNearby)
			s.GET("/most-used-modes", stats.GetMostUsedModes)
		}
	}

	return r
}
