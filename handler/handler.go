// Package handler wires the HTTP surface: redirects, credential submission,
// frame rendering, and the token-gated management API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/HaslienFotografene/haslien-short-2/cache"
	"github.com/HaslienFotografene/haslien-short-2/config"
	"github.com/HaslienFotografene/haslien-short-2/resolver"
	"github.com/HaslienFotografene/haslien-short-2/stats"
	"github.com/HaslienFotografene/haslien-short-2/store"
	"github.com/HaslienFotografene/haslien-short-2/token"
)

// Handler carries the service dependencies for every route.
type Handler struct {
	store    *store.Store
	resolver *resolver.Resolver
	recorder *stats.Recorder
	issuer   *token.Issuer
	cache    *cache.Cache
	config   config.Config
	baseURL  string
}

// New creates a handler with its dependencies injected.
func New(st *store.Store, res *resolver.Resolver, rec *stats.Recorder, issuer *token.Issuer, docCache *cache.Cache, cfg config.Config) *Handler {
	baseURL := cfg.WebServer.BaseURL
	if baseURL == "" {
		baseURL = cfg.WebServer.Scheme + "://" + cfg.WebServer.IP + ":" + cfg.WebServer.Port
	}
	return &Handler{
		store:    st,
		resolver: res,
		recorder: rec,
		issuer:   issuer,
		cache:    docCache,
		config:   cfg,
		baseURL:  baseURL,
	}
}

// opCtx derives the per-operation storage timeout from the request context.
func (h *Handler) opCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		SendJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"redis":  "unavailable",
		})
		return
	}

	SendJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"redis":  "connected",
	})
}

// CacheMetrics handles GET /cache/metrics.
func (h *Handler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.config.Cache.Enabled || h.cache == nil {
		SendError(w, http.StatusServiceUnavailable, "Cache is disabled.")
		return
	}
	SendJSON(w, http.StatusOK, h.cache.Snapshot())
}
