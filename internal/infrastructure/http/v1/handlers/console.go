package handlers

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AbdullahAsendar/chimney-sub000/internal/core/apperror"
	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/engine"
)

// ConsoleHandler serves the generic CRUD console API. Each page is backed
// by its own engine instance owning that page's rows and caches.
type ConsoleHandler struct {
	base     *BaseHandler
	registry *descriptor.Registry
	engines  map[string]*engine.Engine
}

// NewConsoleHandler creates the console handler.
func NewConsoleHandler(base *BaseHandler, registry *descriptor.Registry, engines map[string]*engine.Engine) *ConsoleHandler {
	return &ConsoleHandler{base: base, registry: registry, engines: engines}
}

// RegisterRoutes wires the console endpoints.
func (h *ConsoleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pages", h.ListPages)
	rg.GET("/pages/:page", h.GetPage)
	rg.GET("/pages/:page/rows", h.ListRows)
	rg.POST("/pages/:page/rows", h.CreateRow)
	rg.PATCH("/pages/:page/rows/:id", h.UpdateRow)
	rg.POST("/pages/:page/rows/:id/toggle-deleted", h.ToggleDeleted)
	rg.GET("/pages/:page/form", h.CreateForm)
	rg.GET("/pages/:page/rows/:id/form", h.EditForm)
	rg.POST("/pages/:page/blob-check", h.BlobCheck)
	rg.POST("/pages/:page/normalize", h.NormalizeInput)
}

func (h *ConsoleHandler) engineFor(c *gin.Context) (*engine.Engine, bool) {
	eng, ok := h.engines[c.Param("page")]
	if !ok {
		h.base.Error(c, apperror.NewNotFound("page", c.Param("page")))
		return nil, false
	}
	return eng, true
}

// ListPages returns every registered page configuration.
func (h *ConsoleHandler) ListPages(c *gin.Context) {
	h.base.OK(c, gin.H{"pages": h.registry.List()})
}

// GetPage returns one page configuration.
func (h *ConsoleHandler) GetPage(c *gin.Context) {
	cfg, ok := h.registry.Get(c.Param("page"))
	if !ok {
		h.base.Error(c, apperror.NewNotFound("page", c.Param("page")))
		return
	}
	h.base.OK(c, cfg)
}

// ListRows refreshes the page for the requested query state and returns the
// current rows with their rendered display cells. An unchanged query state
// answers from the in-memory rows without touching the gateway.
func (h *ConsoleHandler) ListRows(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}

	q := h.parseQuery(c)
	applied, err := eng.Refresh(c.Request.Context(), q)
	if err != nil {
		h.base.Error(c, err)
		return
	}

	rows, _ := eng.Snapshot()
	cells, total := eng.Render()
	h.base.OK(c, gin.H{
		"rows":    rows,
		"cells":   cells,
		"total":   total,
		"applied": applied,
	})
}

// CreateRow posts a new record built from the submitted form values.
func (h *ConsoleHandler) CreateRow(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}
	if !eng.Config().EnableCreate {
		h.base.Error(c, apperror.NewForbidden("create disabled for this page"))
		return
	}

	var values map[string]any
	if !h.base.BindJSON(c, &values) {
		return
	}

	row, err := eng.Create(c.Request.Context(), values)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.Created(c, row)
}

// UpdateRow patches a record, constrained to the page's editable fields.
func (h *ConsoleHandler) UpdateRow(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}
	if !eng.Config().EnableEdit {
		h.base.Error(c, apperror.NewForbidden("edit disabled for this page"))
		return
	}

	var values map[string]any
	if !h.base.BindJSON(c, &values) {
		return
	}

	row, err := eng.Update(c.Request.Context(), c.Param("id"), values)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, row)
}

// ToggleDeleted flips the record's deleted flag. No confirmation step; the
// toggle is its own undo.
func (h *ConsoleHandler) ToggleDeleted(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}
	if !eng.Config().EnableDelete {
		h.base.Error(c, apperror.NewForbidden("delete disabled for this page"))
		return
	}

	deleted, err := eng.ToggleDeleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, gin.H{"id": c.Param("id"), "deleted": deleted})
}

// CreateForm returns the create form: ordered fields with input kinds and
// the default-seeded values.
func (h *ConsoleHandler) CreateForm(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}
	cfg := eng.Config()
	h.base.OK(c, gin.H{
		"fields": h.formFields(cfg, cfg.EditableFields(nil)),
		"values": engine.SeedCreate(cfg),
	})
}

// EditForm returns the edit form for one row, seeded from its current
// in-memory values.
func (h *ConsoleHandler) EditForm(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}
	cfg := eng.Config()

	rows, _ := eng.Snapshot()
	for _, row := range rows {
		if row.ID() == c.Param("id") {
			keys := make([]string, 0, len(row))
			for k := range row {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			h.base.OK(c, gin.H{
				"fields": h.formFields(cfg, cfg.EditableFields(keys)),
				"values": engine.SeedEdit(cfg, row),
			})
			return
		}
	}
	h.base.Error(c, apperror.NewNotFound(cfg.Entity, c.Param("id")))
}

// BlobCheck validates a structured-blob field edit. Invalid JSON is
// reported, never rejected.
func (h *ConsoleHandler) BlobCheck(c *gin.Context) {
	eng, ok := h.engineFor(c)
	if !ok {
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if !h.base.BindJSON(c, &req) {
		return
	}
	h.base.OK(c, engine.CheckBlob(eng.Config(), req.Field, req.Value))
}

// NormalizeInput coerces an on-change field value (today only date-named
// fields) and echoes the result.
func (h *ConsoleHandler) NormalizeInput(c *gin.Context) {
	if _, ok := h.engineFor(c); !ok {
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if !h.base.BindJSON(c, &req) {
		return
	}
	h.base.OK(c, gin.H{"field": req.Field, "value": engine.NormalizeFieldInput(req.Field, req.Value)})
}

type formField struct {
	Name string          `json:"name"`
	Kind descriptor.Kind `json:"kind"`
}

func (h *ConsoleHandler) formFields(cfg *descriptor.PageConfig, fields []string) []formField {
	out := make([]formField, 0, len(fields))
	for _, f := range fields {
		out = append(out, formField{Name: f, Kind: cfg.InputKind(f)})
	}
	return out
}

func (h *ConsoleHandler) parseQuery(c *gin.Context) engine.QueryState {
	q := engine.QueryState{
		PageIndex:   h.base.ParseIntQuery(c, "pageIndex", 0),
		PageSize:    h.base.ParseIntQuery(c, "pageSize", engine.DefaultPageSize),
		Search:      c.Query("search"),
		FilterKey:   c.Query("filterKey"),
		FilterValue: c.Query("filterValue"),
	}
	if sortParam := c.Query("sort"); sortParam != "" {
		for _, part := range strings.Split(sortParam, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.HasPrefix(part, "-") {
				q.Sorting = append(q.Sorting, engine.SortField{Field: part[1:], Desc: true})
			} else {
				q.Sorting = append(q.Sorting, engine.SortField{Field: part})
			}
		}
	}
	return q
}
