package searches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/movequote/internal/common"
	"github.com/example/movequote/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, s CachedSearch) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO search_cache (query_id, user_id, payload, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(query_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`, s.Query.ID, s.Query.UserID, payload)
	if err != nil {
		return fmt.Errorf("failed to save search %d: %w", s.Query.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]CachedSearch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM search_cache
		WHERE user_id = ?
		ORDER BY updated_at DESC, query_id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var result []CachedSearch
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		var s CachedSearch
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("failed to decode cached search: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, queryID int64) (*CachedSearch, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM search_cache WHERE query_id = ?`, queryID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search %d: %w", queryID, err)
	}

	var s CachedSearch
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode cached search: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM search_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear search cache: %w", err)
	}
	return nil
}
