package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/dropscout/internal/contracts"
)

// Querier is the subset of pgxpool.Pool used by repositories
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const historySchema = `
	CREATE TABLE IF NOT EXISTS validation_history (
		id                 BIGSERIAL PRIMARY KEY,
		product_id         TEXT        NOT NULL DEFAULT '',
		product_name       TEXT        NOT NULL,
		category           TEXT        NOT NULL DEFAULT '',
		composite_score    INTEGER     NOT NULL,
		raw_score          INTEGER     NOT NULL,
		status             TEXT        NOT NULL,
		social_proof_score INTEGER     NOT NULL DEFAULT 0,
		signals            JSONB       NOT NULL,
		result             JSONB       NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_validation_history_created_at
		ON validation_history (created_at DESC);
`

// HistoryRepository implements contracts.HistoryRepository on PostgreSQL
// ⭐ SSOT: validation history is stored and read here only
type HistoryRepository struct {
	db Querier
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db Querier) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the history table if missing
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to migrate validation_history: %w", err)
	}
	return nil
}

// Save inserts record and fills its ID and CreatedAt
func (r *HistoryRepository) Save(ctx context.Context, record *contracts.HistoryRecord) error {
	signals, err := json.Marshal(record.Signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO validation_history (
			product_id, product_name, category,
			composite_score, raw_score, status, social_proof_score,
			signals, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err = r.db.QueryRow(ctx, query,
		record.Ref.ID,
		record.Ref.Name,
		record.Ref.Category,
		record.Result.CompositeScore,
		record.Result.RawScore,
		string(record.Result.Status),
		record.SocialScore,
		signals,
		result,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert validation history: %w", err)
	}
	return nil
}

// Recent returns records created at or after since, newest first
func (r *HistoryRepository) Recent(ctx context.Context, since time.Time, limit int) ([]contracts.HistoryRecord, error) {
	query := `
		SELECT
			id, product_id, product_name, category,
			social_proof_score, signals, result, created_at
		FROM validation_history
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation history: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.HistoryRecord, 0)
	for rows.Next() {
		var rec contracts.HistoryRecord
		var signals, result []byte

		if err := rows.Scan(
			&rec.ID,
			&rec.Ref.ID,
			&rec.Ref.Name,
			&rec.Ref.Category,
			&rec.SocialScore,
			&signals,
			&result,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal(signals, &rec.Signals); err != nil {
			return nil, fmt.Errorf("failed to decode signals for id %d: %w", rec.ID, err)
		}
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result for id %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}
