package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AbdullahAsendar/chimney-sub000/internal/core/apperror"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
	"github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/storage/postgres"
)

const defaultHistoryLimit = 50

// UtilityHandler proxies the operational side endpoints of the gateway
// (cache eviction, feature toggles, document regeneration) and exposes the
// local audit history when an audit store is configured.
type UtilityHandler struct {
	base  *BaseHandler
	gw    *gateway.Client
	audit *postgres.AuditStore
}

// NewUtilityHandler creates the utility handler. The audit store may be nil.
func NewUtilityHandler(base *BaseHandler, gw *gateway.Client, audit *postgres.AuditStore) *UtilityHandler {
	return &UtilityHandler{base: base, gw: gw, audit: audit}
}

// RegisterRoutes wires the utility endpoints.
func (h *UtilityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/utility/cache-evict", h.CacheEvict)
	rg.POST("/utility/feature-toggle", h.FeatureToggle)
	rg.POST("/utility/regenerate-document", h.RegenerateDocument)
	rg.GET("/audit/:entity/:id", h.AuditHistory)
}

type cacheEvictRequest struct {
	Service string `json:"service" binding:"required"`
	Cache   string `json:"cache" binding:"required"`
}

// CacheEvict asks a backend service to drop one of its named caches.
func (h *UtilityHandler) CacheEvict(c *gin.Context) {
	var req cacheEvictRequest
	if !h.base.BindJSON(c, &req) {
		return
	}
	if err := h.gw.Post(c.Request.Context(), req.Service, "utility/cache/"+req.Cache+"/evict", nil); err != nil {
		h.base.Error(c, apperror.NewSubmit("cache", err))
		return
	}
	h.base.OK(c, gin.H{"service": req.Service, "cache": req.Cache, "evicted": true})
}

type featureToggleRequest struct {
	Service string `json:"service" binding:"required"`
	Feature string `json:"feature" binding:"required"`
	Enabled bool   `json:"enabled"`
}

// FeatureToggle flips a backend feature flag.
func (h *UtilityHandler) FeatureToggle(c *gin.Context) {
	var req featureToggleRequest
	if !h.base.BindJSON(c, &req) {
		return
	}
	body := map[string]any{"feature": req.Feature, "enabled": req.Enabled}
	if err := h.gw.Post(c.Request.Context(), req.Service, "utility/feature-toggles", body); err != nil {
		h.base.Error(c, apperror.NewSubmit("feature toggle", err))
		return
	}
	h.base.OK(c, gin.H{"feature": req.Feature, "enabled": req.Enabled})
}

type regenerateDocumentRequest struct {
	Service    string `json:"service" binding:"required"`
	DocumentID string `json:"documentId" binding:"required"`
}

// RegenerateDocument asks the owning service to rebuild a generated document.
func (h *UtilityHandler) RegenerateDocument(c *gin.Context) {
	var req regenerateDocumentRequest
	if !h.base.BindJSON(c, &req) {
		return
	}
	if err := h.gw.Post(c.Request.Context(), req.Service, "documents/"+req.DocumentID+"/regenerate", nil); err != nil {
		h.base.Error(c, apperror.NewSubmit("document", err))
		return
	}
	h.base.OK(c, gin.H{"documentId": req.DocumentID, "requested": true})
}

// AuditHistory returns the recorded operator mutations for one record,
// newest first.
func (h *UtilityHandler) AuditHistory(c *gin.Context) {
	if h.audit == nil {
		h.base.Error(c, apperror.NewNotFound("audit trail", "disabled"))
		return
	}
	limit := h.base.ParseIntQuery(c, "limit", defaultHistoryLimit)
	entries, err := h.audit.History(c.Request.Context(), c.Param("entity"), c.Param("id"), limit)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, gin.H{"entries": entries})
}
