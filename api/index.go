package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "wildlife-threat-api/configs"
	"wildlife-threat-api/pkg/app"
	"wildlife-threat-api/pkg/logger"
)

var (
	router   *gin.Engine
	setupErr error
	once     sync.Once
)

// setupApp trains the model and builds the router once per function instance.
// Serverless platforms inject the environment, so no .env file is read here.
func setupApp() (*gin.Engine, error) {
	once.Do(func() {
		cfg := config.LoadConfig()
		if err := logger.Init(cfg.LogLevel, "json"); err != nil {
			setupErr = err
			return
		}

		a, err := app.Build(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize application", zap.Error(err))
			setupErr = err
			return
		}
		router = a.Router()
		logger.Info("Application initialized for serverless handler")
	})
	return router, setupErr
}

// Handler is the serverless function entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := setupApp()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Service initialization failed"}`))
		return
	}
	h.ServeHTTP(w, r)
}
