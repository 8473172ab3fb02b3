// Package postgres provides the optional PostgreSQL-backed audit trail of
// operator actions. When no database is configured the console runs with a
// no-op recorder instead.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/compress/zstd"

	appctx "github.com/AbdullahAsendar/chimney-sub000/internal/core/context"
	"github.com/AbdullahAsendar/chimney-sub000/pkg/logger"
)

// CompressionAlgo specifies how a change payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// compressThreshold is the change-payload size above which zstd kicks in.
const compressThreshold = 10 * 1024

// AuditEntry is one recorded operator action.
type AuditEntry struct {
	ID                string          `db:"id"`
	Entity            string          `db:"entity"`
	EntityID          string          `db:"entity_id"`
	Action            string          `db:"action"`
	AccountID         string          `db:"account_id"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditStore persists operator actions.
type AuditStore struct {
	pool    *pgxpool.Pool
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewAuditStore creates an audit store on the given pool.
func NewAuditStore(pool *pgxpool.Pool) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditStore{pool: pool, encoder: encoder, decoder: decoder}, nil
}

func (s *AuditStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Record implements the engine's ActionRecorder. Failures are logged, never
// propagated: the audit trail must not block operator actions.
func (s *AuditStore) Record(ctx context.Context, entity, entityID, action string, changes map[string]any) {
	if err := s.insert(ctx, entity, entityID, action, changes); err != nil {
		logger.Error(ctx, "audit record failed",
			"entity", entity, "entity_id", entityID, "action", action, "error", err)
	}
}

func (s *AuditStore) insert(ctx context.Context, entity, entityID, action string, changes map[string]any) error {
	encoded, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	entry := AuditEntry{
		ID:              uuid.New().String(),
		Entity:          entity,
		EntityID:        entityID,
		Action:          action,
		AccountID:       appctx.GetAccountID(ctx),
		Changes:         encoded,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}
	if len(entry.Changes) > compressThreshold {
		entry.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}

	q := s.builder().
		Insert("console_audit").
		Columns("id", "entity", "entity_id", "action", "account_id",
			"changes", "changes_compressed", "compression_algo", "created_at").
		Values(entry.ID, entry.Entity, entry.EntityID, entry.Action, entry.AccountID,
			entry.Changes, entry.ChangesCompressed, entry.CompressionAlgo, entry.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History retrieves recent audit entries for one record, newest first.
func (s *AuditStore) History(ctx context.Context, entity, entityID string, limit int) ([]AuditEntry, error) {
	q := s.builder().
		Select("id", "entity", "entity_id", "action", "account_id",
			"changes", "changes_compressed", "compression_algo", "created_at").
		From("console_audit").
		Where(squirrel.Eq{"entity": entity, "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var entries []AuditEntry
	if err := pgxscan.Select(ctx, s.pool, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		if e.CompressionAlgo != CompressionZstd || len(e.ChangesCompressed) == 0 {
			continue
		}
		decompressed, err := s.decoder.DecodeAll(e.ChangesCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
		e.Changes = decompressed
		e.ChangesCompressed = nil
	}
	return entries, nil
}

// Diff calculates the per-field difference between two record states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}
	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}
	return changes
}

func equal(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
