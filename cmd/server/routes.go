// Package main provides the schedule bot server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glebkhr/schedbot-go/internal/source"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, store *source.Store, registry *prometheus.Registry) {
	// Root endpoint - redirect to GitHub
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/glebkhr/schedbot-go")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - reports which sources have a loaded timetable.
	// Sources load lazily, so an empty cache is still "ready": the first
	// user request triggers the fetch.
	readyHandler := func(c *gin.Context) {
		sources := store.Sources()
		loaded := 0
		perSource := make(gin.H, len(sources))
		for _, src := range sources {
			ok := store.Loaded(src.ID)
			if ok {
				loaded++
			}
			perSource[src.ID] = ok
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"sources": perSource,
			"loaded":  loaded,
			"total":   len(sources),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
