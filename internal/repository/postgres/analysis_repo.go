package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

// jsonOrEmpty keeps NOT NULL JSONB columns valid when nothing was produced yet.
func jsonOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}

func (r *analysisRepo) Create(ctx context.Context, a *domain.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Result = jsonOrEmpty(a.Result)
	a.FieldProvenance = jsonOrEmpty(a.FieldProvenance)

	query := `INSERT INTO analyses (
		id, order_id, document_id, user_id, analysis_type, language, status,
		result, field_provenance, attempts, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.OrderID, a.DocumentID, a.UserID, a.AnalysisType, a.Language, a.Status,
		a.Result, a.FieldProvenance, a.Attempts, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error) {
	var a domain.Analysis
	err := r.db.GetContext(ctx, &a, "SELECT * FROM analyses WHERE id = $1", analysisID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *analysisRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Analysis, error) {
	var list []domain.Analysis
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM analyses WHERE order_id = $1 ORDER BY created_at, id", orderID)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListByOrder: %w", err)
	}
	return list, nil
}

func (r *analysisRepo) UpdateResult(ctx context.Context, a *domain.Analysis) error {
	a.UpdatedAt = time.Now().UTC()
	query := `UPDATE analyses SET
		status = $1, result = $2, raw_response = $3, model_used = $4, prompt_used = $5,
		field_provenance = $6, confidence = $7, processing_time_ms = $8, cache_hit = $9,
		attempts = $10, retry_after = $11, error_message = $12, completed_at = $13, updated_at = $14
		WHERE id = $15`
	result, err := r.db.ExecContext(ctx, query,
		a.Status, jsonOrEmpty(a.Result), a.RawResponse, a.ModelUsed, a.PromptUsed,
		jsonOrEmpty(a.FieldProvenance), a.Confidence, a.ProcessingTimeMs, a.CacheHit,
		a.Attempts, a.RetryAfter, a.ErrorMessage, a.CompletedAt, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("analysisRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued uses SKIP LOCKED so several workers can poll the same table
// without claiming a row twice.
func (r *analysisRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Analysis, error) {
	var claimed []domain.Analysis
	err := r.db.SelectContext(ctx, &claimed, `
		UPDATE analyses SET status = 'processing', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM analyses
			WHERE status = 'queued' AND (retry_after IS NULL OR retry_after <= NOW())
			ORDER BY retry_after NULLS FIRST, created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`, limit)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ClaimQueued: %w", err)
	}
	return claimed, nil
}

func (r *analysisRepo) CountByStatus(ctx context.Context, orderID uuid.UUID) (map[domain.AnalysisStatus]int, error) {
	var rows []struct {
		Status domain.AnalysisStatus `db:"status"`
		Count  int                   `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) AS count FROM analyses WHERE order_id = $1 GROUP BY status", orderID)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.CountByStatus: %w", err)
	}
	counts := make(map[domain.AnalysisStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *analysisRepo) ListCompleted(ctx context.Context, offset, limit int) ([]domain.Analysis, error) {
	var list []domain.Analysis
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM analyses WHERE status = 'completed' ORDER BY created_at, id LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListCompleted: %w", err)
	}
	return list, nil
}
