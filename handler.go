package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds shared dependencies (store, tracker, logger, metrics) for all route handlers.
type Handler struct {
	store   Store
	tracker *tracker
	log     *zap.Logger
	metrics *metrics
}

func newHandler(store Store, loc *time.Location, log *zap.Logger) *Handler {
	m := newMetrics()
	return &Handler{
		store:   store,
		tracker: newTracker(store, loc, log, m),
		log:     log,
		metrics: m,
	}
}

/* ─── Response envelope ──────────────────────────────────────────────── */

// apiError returns the failure envelope: {"success": false, "message": "..."}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// apiOK returns the success envelope with an optional message.
func apiOK(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// respondError maps domain errors onto the envelope. Expected conditions get
// a specific message; anything else is logged and reported as fallback so
// no internal detail reaches the client.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var inErr *inputError
	switch {
	case errors.As(err, &inErr):
		apiError(c, http.StatusBadRequest, inErr.msg)
	case errors.Is(err, ErrInvalidInput):
		apiError(c, http.StatusBadRequest, "invalid input")
	case errors.Is(err, ErrDuplicateEntry):
		apiError(c, http.StatusConflict, "Entry already exists for this date")
	case errors.Is(err, ErrNotFound):
		apiError(c, http.StatusNotFound, "User not found")
	default:
		if fallback == "" {
			fallback = "Internal server error"
		}
		h.log.Error(fallback,
			zap.String("path", c.FullPath()),
			zap.Int("user_id", c.GetInt("user_id")),
			zap.Error(err))
		apiError(c, http.StatusInternalServerError, fallback)
	}
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// requestLogger writes one structured line per request.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// healthz reports whether the store is reachable.
func (h *Handler) healthz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		apiError(c, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	apiOK(c, http.StatusOK, "", gin.H{"status": "ok"})
}

// newRouter builds the engine with middleware and routes.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), h.requestLogger(), h.metrics.instrument())
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", h.healthz)
	router.GET("/metrics", h.metrics.handler())
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/auth/me", h.getCurrentUser)
	api.PUT("/users/personal-info", h.updatePersonalInfo)
	api.POST("/users/calculate-recommendations", h.calculateRecommendations)
	api.PUT("/users/goals", h.updateGoals)
	api.POST("/tracking/entries", h.addEntry)
	api.GET("/tracking/entries", h.getHistory)
	api.GET("/tracking/progress-stats", h.getProgressStats)
}
