package main

import (
	"context"
	"net/http"
	"time"

	"github.com/VirajsNexus/HireVoid/internal/analysis"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires every HTTP route onto h.
func registerRoutes(h *server.Hertz, cfg *ApiConfig) {
	h.Use(cfg.requestLogger)

	h.GET("/health", handleHealth)
	h.GET("/metrics", metricsHandler(promhttp.Handler()))

	api := h.Group("/api")
	api.POST("/analyze-match", cfg.handleAnalyze(analysis.CategoryMatch))
	api.POST("/analyze-resume", cfg.handleAnalyze(analysis.CategoryResume))
	api.POST("/analyze-jd", cfg.handleAnalyze(analysis.CategoryJobDescription))
	api.POST("/find-linkedin-jobs", cfg.handleFindJobs)

	api.GET("/analyses", cfg.handleListAnalyses)
	api.GET("/analyses/:id", cfg.handleGetAnalysis)
	api.DELETE("/analyses/:id", cfg.handleDeleteAnalysis)

	api.POST("/uploads", cfg.handleUpload)
	api.GET("/uploads/:id", cfg.handleGetUpload)
}

func (cfg *ApiConfig) requestLogger(ctx context.Context, c *app.RequestContext) {
	start := time.Now()
	c.Next(ctx)
	cfg.Log.Info().
		Str("method", string(c.Method())).
		Str("path", string(c.Path())).
		Int("status", c.Response.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
}

// metricsHandler serves a net/http handler through hertz's compat request
// and response writer.
func metricsHandler(next http.Handler) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		req, err := adaptor.GetCompatRequest(&c.Request)
		if err != nil {
			respondWithError(c, consts.StatusInternalServerError, "Failed to read metrics request")
			return
		}
		next.ServeHTTP(adaptor.GetCompatResponseWriter(&c.Response), req.WithContext(ctx))
	}
}
