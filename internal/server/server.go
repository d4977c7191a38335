// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the parts pipeline and run history over HTTP.
// Implements: prd009-operations (R3.1-R3.4); docs/ARCHITECTURE § HTTP Surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/runlog"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// Runner produces a parts list from a project description.
// *pipeline.Pipeline satisfies this.
type Runner interface {
	Run(ctx context.Context, description string) (*types.RunResult, error)
}

// Handler holds the dependencies for the HTTP handlers. The history store
// may be nil, in which case the run history endpoints report that history
// is not configured.
type Handler struct {
	runner  Runner
	store   *runlog.Store
	version string
	logger  *zap.Logger
}

// NewHandler creates a Handler around the pipeline runner and history store.
func NewHandler(runner Runner, store *runlog.Store, version string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{runner: runner, store: store, version: version, logger: logger}
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg types.ServerConfig, h *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/parts-lists", h.CreatePartsList)

		runs := v1.Group("/runs")
		{
			runs.GET("", h.ListRuns)
			runs.GET("/:id", h.GetRun)
		}
	}

	return router
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "parts-engine",
		"version": h.version,
	})
}

type createRunRequest struct {
	Description string `json:"description" binding:"required"`
}

// CreatePartsList runs the pipeline on the posted project description and
// returns the full run result. Completed runs are recorded in the history
// store when one is configured.
func (h *Handler) CreatePartsList(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pipeline is not configured"})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), req.Description)
	if err != nil {
		h.logger.Error("pipeline run failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if h.store != nil {
		if err := h.store.SaveRun(c.Request.Context(), result); err != nil {
			h.logger.Warn("recording run in history failed", zap.String("run_id", result.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, result)
}

// ListRuns returns run summaries from the history store, newest first.
// The search query parameter filters by full-text match; limit caps the
// number of rows.
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is not configured"})
		return
	}

	opts := runlog.ListOptions{Search: c.Query("search")}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		opts.MaxResults = n
	}

	summaries, err := h.store.ListRuns(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("listing runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing runs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": summaries})
}

// GetRun returns one stored run, including its trace steps.
func (h *Handler) GetRun(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is not configured"})
		return
	}

	result, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, runlog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("loading run failed", zap.String("run_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading run failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
