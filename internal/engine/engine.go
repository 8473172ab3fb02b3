// Package engine is the generic CRUD engine behind every console page: it
// derives list requests from query state, normalizes JSON:API responses
// into flat rows, maintains the auxiliary option caches and builds write
// payloads. One Engine instance owns the rows of one page; there is no
// cross-instance sharing.
package engine

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/AbdullahAsendar/chimney-sub000/internal/core/apperror"
	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
	"github.com/AbdullahAsendar/chimney-sub000/pkg/logger"
)

// warmDelay defers relationship option warming so the primary list fetch
// goes out first.
const warmDelay = 200 * time.Millisecond

// ActionRecorder records operator mutations for the audit trail.
type ActionRecorder interface {
	Record(ctx context.Context, entity, entityID, action string, changes map[string]any)
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, string, string, map[string]any) {}

// Engine orchestrates fetching, caching and mutation for one console page.
type Engine struct {
	cfg    *descriptor.PageConfig
	gw     *gateway.Client
	audit  ActionRecorder

	mu              sync.Mutex
	rows            []Row
	total           int
	lastFingerprint string
	inFlight        bool
	issuedToken     uint64

	// Relationships, Predefined and Filters are the three independent
	// auxiliary option caches.
	Relationships *OptionCache
	Predefined    *OptionCache
	Filters       *OptionCache

	warmOnce sync.Once
}

// New creates the engine for one page configuration.
func New(cfg *descriptor.PageConfig, gw *gateway.Client, audit ActionRecorder) *Engine {
	if audit == nil {
		audit = NopRecorder{}
	}
	e := &Engine{cfg: cfg, gw: gw, audit: audit}

	e.Relationships = NewOptionCache(func(ctx context.Context, key string) ([]Option, error) {
		return e.fetchRelationshipOptions(ctx, key)
	})
	e.Predefined = NewOptionCache(func(ctx context.Context, key string) ([]Option, error) {
		spec, ok := cfg.PredefinedFor(key)
		if !ok || !spec.Dynamic() {
			return nil, errors.New("no dynamic option endpoint for field " + key)
		}
		return e.gw.Lookup(ctx, spec.Service, spec.APIEndpoint)
	})
	e.Filters = NewOptionCache(func(ctx context.Context, key string) ([]Option, error) {
		f, ok := cfg.FilterByKey(key)
		if !ok || f.Type != descriptor.FilterDynamic {
			return nil, errors.New("no dynamic filter endpoint for key " + key)
		}
		return e.gw.Lookup(ctx, f.Service, f.APIEndpoint)
	})

	// Static predefined sets never hit the network.
	for field, spec := range cfg.PredefinedFields {
		if spec.Dynamic() {
			continue
		}
		items := make([]Option, 0, len(spec.Options))
		for _, o := range spec.Options {
			items = append(items, Option{"value": o, "name": o})
		}
		e.Predefined.Seed(field, items)
	}

	return e
}

// Config returns the page configuration driving this engine.
func (e *Engine) Config() *descriptor.PageConfig {
	return e.cfg
}

// Refresh issues the list request for the query state. It is a no-op when
// the fingerprint is unchanged since the last issued request or another
// fetch is in flight. A response is applied only if no newer request was
// issued while it was pending: each issue takes a monotonic token and a
// completion carrying a superseded token is discarded.
func (e *Engine) Refresh(ctx context.Context, q QueryState) (bool, error) {
	q = q.withDefaults()
	fp := q.Fingerprint()

	e.mu.Lock()
	if fp == e.lastFingerprint || e.inFlight {
		e.mu.Unlock()
		return false, nil
	}
	e.inFlight = true
	e.issuedToken++
	token := e.issuedToken
	e.lastFingerprint = fp
	e.mu.Unlock()

	doc, err := e.gw.List(ctx, e.cfg.Service, e.cfg.Entity, BuildParams(e.cfg, q))

	e.mu.Lock()
	e.inFlight = false
	if err != nil {
		// Previous rows are retained; clearing the fingerprint lets a
		// retry re-issue the identical query.
		e.lastFingerprint = ""
		e.mu.Unlock()
		return false, e.wrapErr(apperror.NewFetch(e.cfg.Entity, err), "list "+e.cfg.Entity, err)
	}
	if token != e.issuedToken {
		e.mu.Unlock()
		logger.Debug(ctx, "discarding superseded list response", "entity", e.cfg.Entity, "token", token)
		return false, nil
	}

	rows := make([]Row, 0, len(doc.Data))
	for _, res := range doc.Data {
		rows = append(rows, NormalizeResource(e.cfg, res))
	}
	e.rows = rows
	if doc.Meta != nil && doc.Meta.Page != nil {
		e.total = doc.Meta.Page.TotalRecords
	} else {
		// Degraded: without page metadata the count undercounts off the
		// last page.
		e.total = len(rows)
	}
	e.mu.Unlock()

	e.warmRelationships(ctx)
	return true, nil
}

// Snapshot returns a copy of the current rows and total.
func (e *Engine) Snapshot() ([]Row, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows := make([]Row, len(e.rows))
	for i, r := range e.rows {
		rows[i] = r.clone()
	}
	return rows, e.total
}

// Create posts a new record, prepends the normalized result to the row list
// and increments the total. Form state survives on failure; the caller
// keeps the submitted values.
func (e *Engine) Create(ctx context.Context, values map[string]any) (Row, error) {
	attrs, rels := BuildPayload(e.cfg, values, FormFields(values))
	res, err := e.gw.Create(ctx, e.cfg.Service, e.cfg.Entity, gateway.NewCreatePayload(e.cfg.Entity, attrs, rels))
	if err != nil {
		return nil, e.wrapErr(apperror.NewSubmit(e.cfg.Entity, err), "create "+e.cfg.Entity, err)
	}

	row := NormalizeResource(e.cfg, *res)
	e.mu.Lock()
	e.rows = append([]Row{row}, e.rows...)
	e.total++
	e.mu.Unlock()

	e.audit.Record(ctx, e.cfg.Entity, row.ID(), "create", attrs)
	return row.clone(), nil
}

// Update patches a record, constrained to the editable allow-list, and
// merges the submitted values into the in-memory row without a refetch.
func (e *Engine) Update(ctx context.Context, id string, values map[string]any) (Row, error) {
	editable := e.cfg.EditableFields(FormFields(values))
	attrs, rels := BuildPayload(e.cfg, values, editable)
	if len(attrs) == 0 && len(rels) == 0 {
		return nil, apperror.NewValidation("nothing to update")
	}

	err := e.gw.Patch(ctx, e.cfg.Service, e.cfg.Entity, id, gateway.NewPatchPayload(e.cfg.Entity, id, attrs, rels))
	if err != nil {
		return nil, e.wrapErr(apperror.NewSubmit(e.cfg.Entity, err), "update "+e.cfg.Entity, err)
	}

	merged := e.mergeRow(id, attrs, rels)
	e.audit.Record(ctx, e.cfg.Entity, id, "update", attrs)
	return merged, nil
}

// ToggleDeleted flips the record's deleted flag via a direct PATCH and
// updates the row in place on success. On failure the displayed value is
// retained.
func (e *Engine) ToggleDeleted(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	var current bool
	found := false
	for _, row := range e.rows {
		if row.ID() == id {
			current, _ = row["deleted"].(bool)
			found = true
			break
		}
	}
	e.mu.Unlock()
	if !found {
		return false, apperror.NewNotFound(e.cfg.Entity, id)
	}

	next := !current
	attrs := map[string]any{"deleted": next}
	err := e.gw.Patch(ctx, e.cfg.Service, e.cfg.Entity, id, gateway.NewPatchPayload(e.cfg.Entity, id, attrs, nil))
	if err != nil {
		return current, e.wrapErr(apperror.NewSubmit(e.cfg.Entity, err), "toggle "+e.cfg.Entity, err)
	}

	e.mergeRow(id, attrs, nil)
	e.audit.Record(ctx, e.cfg.Entity, id, "toggle", attrs)
	return next, nil
}

// RelationshipLabels resolves the label maps for all configured relations
// from the option cache, for the renderer.
func (e *Engine) RelationshipLabels() map[string]map[string]string {
	labels := make(map[string]map[string]string, len(e.cfg.RelationshipOptions))
	for key, opt := range e.cfg.RelationshipOptions {
		labels[key] = e.Relationships.LabelMap(key, opt)
	}
	return labels
}

// Render produces the display cells for the current rows.
func (e *Engine) Render() ([][]Cell, int) {
	rows, total := e.Snapshot()
	return RenderRows(e.cfg, rows, e.RelationshipLabels()), total
}

// warmRelationships kicks off the relationship caches once per engine,
// shortly after the first applied list fetch.
func (e *Engine) warmRelationships(ctx context.Context) {
	if len(e.cfg.RelationshipOptions) == 0 {
		return
	}
	e.warmOnce.Do(func() {
		warmCtx := context.WithoutCancel(ctx)
		go func() {
			time.Sleep(warmDelay)
			for key := range e.cfg.RelationshipOptions {
				e.Relationships.Request(warmCtx, key)
			}
		}()
	})
}

func (e *Engine) fetchRelationshipOptions(ctx context.Context, key string) ([]Option, error) {
	opt, ok := e.cfg.RelationshipOptions[key]
	if !ok {
		return nil, errors.New("unknown relationship " + key)
	}
	if opt.IsLookupEndpoint {
		return e.gw.Lookup(ctx, opt.Service, opt.Entity)
	}

	// No dedicated lookup endpoint: page through the entity's own chimney
	// list and flatten resources into option items.
	params := url.Values{}
	params.Set("page[number]", "1")
	params.Set("page[size]", "200")
	doc, err := e.gw.List(ctx, opt.Service, opt.Entity, params)
	if err != nil {
		return nil, err
	}
	items := make([]Option, 0, len(doc.Data))
	for _, res := range doc.Data {
		item := Option{"id": res.ID}
		for k, v := range res.Attributes {
			item[k] = v
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *Engine) mergeRow(id string, attrs map[string]any, rels map[string]gateway.Relationship) Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, row := range e.rows {
		if row.ID() != id {
			continue
		}
		for k, v := range attrs {
			row[k] = v
		}
		for relKey, rel := range rels {
			if display, ok := e.cfg.DisplayField(relKey); ok && rel.Data != nil {
				row[display] = rel.Data.ID
			}
		}
		e.rows[i] = row
		return row.clone()
	}
	return nil
}

func (e *Engine) wrapErr(appErr *apperror.AppError, operation string, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return apperror.NewTimeout(operation, cause)
	}
	return appErr
}
