package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	config "wildlife-threat-api/configs"
	"wildlife-threat-api/pkg/services"
)

// RouterDeps is what NewRouter wires into routes.
type RouterDeps struct {
	Config     *config.Config
	Predictor  Predictor
	Monitoring *services.MonitoringService
	// Metrics serves /metrics; nil leaves the route out.
	Metrics http.Handler
}

// NewRouter registers all routes. The legacy unversioned paths stay public;
// /api/v1 is guarded by the X-API-KEY header when an API key is configured.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Monitoring != nil {
		r.Use(deps.Monitoring.LoggingMiddleware())
	}
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-API-KEY", services.RequestIDHeader},
		ExposeHeaders:   []string{services.RequestIDHeader},
	}))

	prediction := NewPredictionHandler(deps.Predictor)
	admin := NewAdminHandler(deps.Config)

	r.GET("/", prediction.Root)
	r.GET("/health", HealthCheck)
	r.GET("/species-list", prediction.ListSpecies)
	r.GET("/predict", prediction.Predict)
	r.POST("/predict", prediction.Predict)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(deps.Config.APIKey))
	{
		v1.GET("/species-list", prediction.ListSpecies)
		v1.GET("/predict", prediction.Predict)
		v1.POST("/predict", prediction.Predict)
		v1.GET("/species-image", prediction.SpeciesImage)
		v1.GET("/model", prediction.ModelInfo)

		adminGroup := v1.Group("/admin")
		{
			adminGroup.GET("/health-status", admin.GetHealthStatus)
			adminGroup.POST("/maintenance/start", admin.StartMaintenance)
			adminGroup.POST("/maintenance/stop", admin.StopMaintenance)
		}

		if deps.Monitoring != nil {
			monitoring := NewMonitoringHandler(deps.Monitoring)
			v1.GET("/monitoring/logs", monitoring.GetLogs)
		}
	}

	return r
}

func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
