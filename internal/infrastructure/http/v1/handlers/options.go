package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AbdullahAsendar/chimney-sub000/internal/core/apperror"
	"github.com/AbdullahAsendar/chimney-sub000/internal/engine"
)

// OptionsHandler serves the three auxiliary option caches of a page:
// relationship options, predefined-choice options and dynamic filter options.
type OptionsHandler struct {
	base    *BaseHandler
	engines map[string]*engine.Engine
}

// NewOptionsHandler creates the options handler.
func NewOptionsHandler(base *BaseHandler, engines map[string]*engine.Engine) *OptionsHandler {
	return &OptionsHandler{base: base, engines: engines}
}

// RegisterRoutes wires the option cache endpoints.
func (h *OptionsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pages/:page/options/:kind/:key", h.GetOptions)
	rg.POST("/pages/:page/options/:kind/:key/retry", h.RetryOptions)
	rg.GET("/pages/:page/labels/:key", h.GetLabels)
}

func (h *OptionsHandler) cacheFor(c *gin.Context) (*engine.OptionCache, bool) {
	eng, ok := h.engines[c.Param("page")]
	if !ok {
		h.base.Error(c, apperror.NewNotFound("page", c.Param("page")))
		return nil, false
	}
	switch c.Param("kind") {
	case "relationship":
		return eng.Relationships, true
	case "predefined":
		return eng.Predefined, true
	case "filter":
		return eng.Filters, true
	default:
		h.base.Error(c, apperror.NewValidation("unknown option kind: "+c.Param("kind")))
		return nil, false
	}
}

// GetOptions triggers a fetch if the key has never loaded and returns the
// cache entry. A failed key answers with a scoped option error until it is
// retried.
func (h *OptionsHandler) GetOptions(c *gin.Context) {
	cache, ok := h.cacheFor(c)
	if !ok {
		return
	}
	key := c.Param("key")
	cache.Request(c.Request.Context(), key)
	h.respondEntry(c, cache, key)
}

// RetryOptions clears the error flag for one key and fetches again. Other
// keys keep whatever state they have.
func (h *OptionsHandler) RetryOptions(c *gin.Context) {
	cache, ok := h.cacheFor(c)
	if !ok {
		return
	}
	key := c.Param("key")
	cache.Retry(key)
	cache.Request(c.Request.Context(), key)
	h.respondEntry(c, cache, key)
}

func (h *OptionsHandler) respondEntry(c *gin.Context, cache *engine.OptionCache, key string) {
	entry := cache.Get(key)
	if entry.Error {
		h.base.Error(c, apperror.NewOption(key, nil))
		return
	}
	h.base.OK(c, entry)
}

// GetLabels returns the value -> label map for one relationship key.
func (h *OptionsHandler) GetLabels(c *gin.Context) {
	eng, ok := h.engines[c.Param("page")]
	if !ok {
		h.base.Error(c, apperror.NewNotFound("page", c.Param("page")))
		return
	}
	key := c.Param("key")
	opt, ok := eng.Config().RelationshipOptions[key]
	if !ok {
		h.base.Error(c, apperror.NewNotFound("relationship", key))
		return
	}
	eng.Relationships.Request(c.Request.Context(), key)
	h.base.OK(c, gin.H{"key": key, "labels": eng.Relationships.LabelMap(key, opt)})
}
