package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"artgen_backend/logging"

	"go.uber.org/zap"
)

// GenerationRecord is one persisted generation.
type GenerationRecord struct {
	ID             string         `json:"id"`
	Model          string         `json:"model"`
	Style          string         `json:"style"`
	Prompt         string         `json:"prompt"`
	EnhancedPrompt string         `json:"enhancedPrompt"`
	NegativePrompt string         `json:"negativePrompt"`
	Parameters     map[string]any `json:"parameters"`
	Image          string         `json:"image"`
	Placeholder    bool           `json:"placeholder"`
	EstimatedCost  float64        `json:"estimatedCost"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Store is the generation history organism. It owns the SQLite connection,
// runs migrations at open, and serves inserts through a background writer
// so the request path never waits on disk.
type Store struct {
	conn     *sql.DB
	writer   *historyWriter
	logger   *logging.Logger
	maxItems int
}

// Open initializes the history store at path. The schema is migrated with
// a dedicated connection before the long-lived one opens. maxItems bounds
// how many generations are retained; older rows are pruned after inserts.
func Open(path string, maxItems int, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxItems <= 0 {
		maxItems = 100
	}

	migrationConn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}
	if err := MigrateUp(migrationConn); err != nil {
		return nil, err
	}

	conn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}

	s := &Store{
		conn:     conn,
		logger:   logger.Named("db"),
		maxItems: maxItems,
	}
	s.writer = newHistoryWriter(s)
	s.writer.Start()
	return s, nil
}

// SaveAsync queues a record for background insertion. Returns false when
// the queue is full; the generation itself already succeeded, so callers
// treat a dropped record as a logged degradation, not a failure.
func (s *Store) SaveAsync(rec GenerationRecord) bool {
	queued := s.writer.Enqueue(rec)
	if !queued {
		s.logger.Warn("history queue full, dropping record", zap.String("id", rec.ID))
	}
	return queued
}

// Insert writes a record synchronously and prunes history past the
// retention limit.
func (s *Store) Insert(ctx context.Context, rec GenerationRecord) error {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return fmt.Errorf("db: encoding parameters: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO generations
			(id, model, style, prompt, enhanced_prompt, negative_prompt,
			 parameters, image, placeholder, estimated_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Model, rec.Style, rec.Prompt, rec.EnhancedPrompt,
		rec.NegativePrompt, string(params), rec.Image, rec.Placeholder,
		rec.EstimatedCost, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db: inserting generation: %w", err)
	}

	return s.prune(ctx)
}

// Recent returns the newest records, most recent first. limit is capped at
// the store's retention limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if limit <= 0 || limit > s.maxItems {
		limit = s.maxItems
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, model, style, prompt, enhanced_prompt, negative_prompt,
		       parameters, image, placeholder, estimated_cost, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("db: querying history: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var params string
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.Style, &rec.Prompt,
			&rec.EnhancedPrompt, &rec.NegativePrompt, &params, &rec.Image,
			&rec.Placeholder, &rec.EstimatedCost, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db: scanning history row: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &rec.Parameters); err != nil {
			rec.Parameters = map[string]any{}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterating history rows: %w", err)
	}
	return records, nil
}

// Count returns the number of stored generations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM generations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db: counting generations: %w", err)
	}
	return count, nil
}

// prune deletes everything beyond the newest maxItems rows.
func (s *Store) prune(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `
		DELETE FROM generations
		WHERE id NOT IN (
			SELECT id FROM generations
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)`, s.maxItems)
	if err != nil {
		return fmt.Errorf("db: pruning history: %w", err)
	}
	return nil
}

// Pending reports how many records are waiting in the write queue.
func (s *Store) Pending() int {
	return s.writer.Pending()
}

// Close drains the write queue and closes the connection.
func (s *Store) Close() error {
	s.writer.Stop()
	return s.conn.Close()
}
