package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// AnalysisRepository persists completed analysis runs.
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository.
func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

type analysisRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	URL       string    `db:"url"`
	Score     int       `db:"score"`
	Result    []byte    `db:"result"`
	ShareURL  string    `db:"share_url"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *analysisRow) toDomain() (*domain.Analysis, error) {
	var result domain.AnalysisResult
	if err := json.Unmarshal(r.Result, &result); err != nil {
		return nil, err
	}

	return &domain.Analysis{
		ID:        r.ID,
		UserID:    r.UserID,
		URL:       r.URL,
		Score:     r.Score,
		Result:    &result,
		ShareURL:  r.ShareURL,
		CreatedAt: r.CreatedAt,
	}, nil
}

// Save inserts a completed run.
func (r *AnalysisRepository) Save(ctx context.Context, analysis *domain.Analysis) error {
	result, err := json.Marshal(analysis.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analyses (id, user_id, url, score, result, share_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.URL,
		analysis.Score,
		result,
		analysis.ShareURL,
		analysis.CreatedAt,
	)
	return err
}

// GetByID retrieves one run with its full result payload.
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	query := `
		SELECT id, user_id, url, score, result, share_url, created_at
		FROM analyses
		WHERE id = $1
	`

	var row analysisRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("analysis", id)
		}
		return nil, err
	}

	return row.toDomain()
}

// ListByUser returns a user's runs newest first, without the result payload.
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Analysis, error) {
	query := `
		SELECT id, user_id, url, score, share_url, created_at
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	type listRow struct {
		ID        uuid.UUID `db:"id"`
		UserID    uuid.UUID `db:"user_id"`
		URL       string    `db:"url"`
		Score     int       `db:"score"`
		ShareURL  string    `db:"share_url"`
		CreatedAt time.Time `db:"created_at"`
	}

	var rows []listRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, err
	}

	analyses := make([]*domain.Analysis, 0, len(rows))
	for _, row := range rows {
		analyses = append(analyses, &domain.Analysis{
			ID:        row.ID,
			UserID:    row.UserID,
			URL:       row.URL,
			Score:     row.Score,
			ShareURL:  row.ShareURL,
			CreatedAt: row.CreatedAt,
		})
	}

	return analyses, nil
}

// CountByUser returns the user's total run count.
func (r *AnalysisRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM analyses WHERE user_id = $1`, userID)
	return count, err
}

// SetShareURL records the exported report location.
func (r *AnalysisRepository) SetShareURL(ctx context.Context, id uuid.UUID, shareURL string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE analyses SET share_url = $2 WHERE id = $1`, id, shareURL)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NotFoundError("analysis", id)
	}

	return nil
}
