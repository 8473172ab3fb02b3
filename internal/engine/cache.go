package engine

import (
	"context"
	"sync"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/pkg/logger"
)

// Option is one lookup item as returned by an option endpoint.
type Option = map[string]any

// FetchFunc loads the option items for one key.
type FetchFunc func(ctx context.Context, key string) ([]Option, error)

// Entry is the cached state for one key. Once Error or FetchedOnce is set,
// Request becomes a no-op until Retry clears the error.
type Entry struct {
	Items       []Option `json:"items"`
	Loading     bool     `json:"loading"`
	Error       bool     `json:"error"`
	FetchedOnce bool     `json:"fetchedOnce"`
}

// OptionCache is a lazy, per-key cache of lookup items. Relationship,
// predefined-choice and custom-filter options each get their own instance;
// keys within one cache are independent.
type OptionCache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	fetch   FetchFunc
}

// NewOptionCache creates a cache backed by the given fetch function.
func NewOptionCache(fetch FetchFunc) *OptionCache {
	return &OptionCache{
		entries: make(map[string]*Entry),
		fetch:   fetch,
	}
}

// Request triggers a fetch for key unless one is in flight, one already
// succeeded, or the last one failed. Concurrent requests for the same key
// collapse into one.
func (c *OptionCache) Request(ctx context.Context, key string) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &Entry{}
		c.entries[key] = entry
	}
	if entry.Loading || entry.FetchedOnce || entry.Error {
		c.mu.Unlock()
		return
	}
	entry.Loading = true
	c.mu.Unlock()

	items, err := c.fetch(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	entry.Loading = false
	if err != nil {
		logger.Warn(ctx, "option fetch failed", "key", key, "error", err)
		entry.Items = nil
		entry.Error = true
		return
	}
	entry.Items = items
	entry.FetchedOnce = true
}

// Retry clears the error flag for one key, permitting exactly one
// subsequent Request. Other keys are untouched.
func (c *OptionCache) Retry(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		entry.Error = false
	}
}

// Get returns a copy of the entry for key.
func (c *OptionCache) Get(key string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		out := *entry
		out.Items = append([]Option(nil), entry.Items...)
		return out
	}
	return Entry{}
}

// Seed stores a fixed item list for key, marking it fetched. Used for
// predefined-choice fields whose option set is static configuration.
func (c *OptionCache) Seed(key string, items []Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{Items: items, FetchedOnce: true}
}

// workflowRelation is the distinguished relation whose labels carry the
// item's source system.
const workflowRelation = "workflow"

// LabelMap builds a value -> display label map for a relationship's cached
// items. The label falls back from the configured label field through
// "name" to the raw id; workflow options are decorated with their source.
func (c *OptionCache) LabelMap(key string, opt descriptor.RelationshipOption) map[string]string {
	entry := c.Get(key)
	labels := make(map[string]string, len(entry.Items))
	for _, item := range entry.Items {
		value := optionValue(item, opt.ValueField)
		if value == "" {
			continue
		}
		labels[value] = optionLabel(item, key, opt.LabelField, value)
	}
	return labels
}

func optionValue(item Option, valueField string) string {
	if valueField != "" {
		if v := asString(item[valueField]); v != "" {
			return v
		}
	}
	return asString(item["id"])
}

func optionLabel(item Option, key, labelField, fallback string) string {
	label := ""
	if labelField != "" {
		label = asString(item[labelField])
	}
	if label == "" {
		label = asString(item["name"])
	}
	if label == "" {
		label = fallback
	}
	if key == workflowRelation {
		if source := asString(item["source"]); source != "" {
			label = label + " (" + source + ")"
		}
	}
	return label
}
