package engine

import (
	"encoding/json"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
)

// CellKind tags how a display cell should be presented.
type CellKind string

const (
	CellText         CellKind = "text"
	CellDate         CellKind = "date"
	CellBlob         CellKind = "blob"
	CellStatus       CellKind = "status"
	CellRelationship CellKind = "relationship"
)

// Cell is one rendered table value. Rendering is a pure function of rows,
// descriptors and cached labels; it never reaches the network.
type Cell struct {
	Kind     CellKind `json:"kind"`
	Text     string   `json:"text"`
	Raw      any      `json:"raw,omitempty"`
	Valid    bool     `json:"valid"`
	Copyable bool     `json:"copyable,omitempty"`
	Active   bool     `json:"active,omitempty"`
}

// RenderRows produces one cell per declared field per row. labels maps
// relationship key -> foreign id -> display label, as resolved from the
// option caches.
func RenderRows(cfg *descriptor.PageConfig, rows []Row, labels map[string]map[string]string) [][]Cell {
	out := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		cells := make([]Cell, 0, len(cfg.Fields))
		for _, field := range cfg.Fields {
			cells = append(cells, RenderCell(cfg, field, row[field], labels))
		}
		out = append(out, cells)
	}
	return out
}

// RenderCell formats one value. The precedence is fixed: relationship
// display field, the literal "deleted" flag, structured blob, date, raw.
func RenderCell(cfg *descriptor.PageConfig, field string, value any, labels map[string]map[string]string) Cell {
	switch cfg.Classify(field) {
	case descriptor.KindRelationship:
		return renderRelationship(cfg, field, value, labels)
	case descriptor.KindDeleted:
		deleted, _ := value.(bool)
		text := "Active"
		if deleted {
			text = "Deactivated"
		}
		return Cell{Kind: CellStatus, Text: text, Raw: deleted, Valid: true, Active: !deleted}
	case descriptor.KindBlob:
		if value != nil && asString(value) != "" {
			return renderBlob(value)
		}
	case descriptor.KindDate:
		if normalized, ok := NormalizeDate(asString(value)); ok {
			return Cell{Kind: CellDate, Text: normalized, Raw: value, Valid: true}
		}
	}
	return renderRaw(value)
}

func renderRelationship(cfg *descriptor.PageConfig, field string, value any, labels map[string]map[string]string) Cell {
	if value == nil || asString(value) == "" {
		return Cell{Kind: CellRelationship, Text: "-", Valid: true}
	}
	id := asString(value)
	if relKey, ok := cfg.RelationshipKeyFor(field); ok {
		if label, ok := labels[relKey][id]; ok {
			return Cell{Kind: CellRelationship, Text: label, Raw: id, Valid: true}
		}
	}
	// Cache not resolved yet: show the raw id, flagged as such.
	return Cell{Kind: CellRelationship, Text: "ID: " + id, Raw: id, Valid: true}
}

func renderBlob(value any) Cell {
	// Attribute values may arrive either as JSON text or as an already
	// structured map; both get a formatted, copyable preview.
	switch v := value.(type) {
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return Cell{Kind: CellBlob, Text: v, Raw: v, Valid: false}
		}
		return Cell{Kind: CellBlob, Text: prettyJSON(parsed), Raw: v, Valid: true, Copyable: true}
	default:
		return Cell{Kind: CellBlob, Text: prettyJSON(v), Raw: v, Valid: true, Copyable: true}
	}
}

func renderRaw(value any) Cell {
	switch value.(type) {
	case nil:
		return Cell{Kind: CellText, Text: "", Valid: true}
	case map[string]any, []any:
		return Cell{Kind: CellText, Text: prettyJSON(value), Raw: value, Valid: true}
	default:
		return Cell{Kind: CellText, Text: asString(value), Raw: value, Valid: true}
	}
}

func prettyJSON(v any) string {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return asString(v)
	}
	return string(encoded)
}
