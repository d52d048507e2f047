// Package api wires the HTTP surface of the payback simulator.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"battery-payback/internal/api/handlers"
	"battery-payback/internal/api/middleware"
	"battery-payback/internal/api/store"
	"battery-payback/internal/config"
	"battery-payback/internal/logger"
	"battery-payback/internal/metrics"
	"battery-payback/internal/sweep"
)

// Deps are the collaborators of the router. Logger, Recorder and Gatherer
// may be nil.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Logger   logger.Logger
	Recorder *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) (*gin.Engine, error) {
	runner, err := sweep.NewRunner(d.Config, d.Logger, d.Recorder)
	if err != nil {
		return nil, err
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(middleware.CORS(d.Config.Server.CORSOrigins))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.ErrorHandler(d.Logger))

	dispatchHandler := handlers.NewDispatchHandler(runner, d.Logger)
	sweepHandler := handlers.NewSweepHandler(d.Config, d.Store, d.Logger, d.Recorder)
	assumptionsHandler := handlers.NewAssumptionsHandler(runner)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/assumptions", assumptionsHandler.Get)
		v1.POST("/dispatch", dispatchHandler.Run)
		v1.POST("/sweep", sweepHandler.Run)
		v1.GET("/sweep/:id", sweepHandler.Get)
		v1.GET("/sweep/:id/workbook", sweepHandler.Workbook)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router, nil
}
