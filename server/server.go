package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mymenu-bot/db"
	"mymenu-bot/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Status is what /health reports besides liveness.
type Status interface {
	BreakerState() string
	SessionCount() int
}

// NewRouter builds the ops endpoints: /health and /metrics.
func NewRouter(status Status) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.PrometheusMiddleware())

	router.GET("/health", func(c *gin.Context) {
		circuit := status.BreakerState()
		body := gin.H{
			"status":          "healthy",
			"catalog_circuit": circuit,
			"sessions":        status.SessionCount(),
			"database":        databaseState(c.Request.Context()),
		}
		if circuit == "open" {
			body["status"] = "degraded"
		}
		c.JSON(http.StatusOK, body)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func databaseState(ctx context.Context) string {
	if db.Pool == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Pool.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}

// Run serves the router on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, router http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops server shutdown", zap.Error(err))
		}
	}()

	logger.Info("ops server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
