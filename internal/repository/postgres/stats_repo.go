package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const userOrderStatsQuery = `SELECT
	COUNT(*) AS total_orders,
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_orders,
	COUNT(CASE WHEN status = 'paid' OR status = 'uploaded' THEN 1 END) AS paid_orders,
	COUNT(CASE WHEN status = 'processing' THEN 1 END) AS processing_orders,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed_orders,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS failed_orders,
	COALESCE(SUM(CASE WHEN paid_at IS NOT NULL THEN price_cents END), 0) AS total_spent_cents
FROM orders WHERE user_id = $1`

const userAnalysisStatsQuery = `SELECT
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS analyses_completed,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS analyses_failed,
	COUNT(CASE WHEN status IN ('queued', 'processing') THEN 1 END) AS analyses_in_progress
FROM analyses WHERE user_id = $1`

func (r *statsRepo) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, userOrderStatsQuery, userID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats orders: %w", err)
	}

	var analyses struct {
		Completed  int `db:"analyses_completed"`
		Failed     int `db:"analyses_failed"`
		InProgress int `db:"analyses_in_progress"`
	}
	if err := r.db.GetContext(ctx, &analyses, userAnalysisStatsQuery, userID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats analyses: %w", err)
	}
	stats.AnalysesCompleted = analyses.Completed
	stats.AnalysesFailed = analyses.Failed
	stats.AnalysesInProgress = analyses.InProgress

	if err := r.db.GetContext(ctx, &stats.TotalDocuments,
		"SELECT COUNT(*) FROM documents WHERE user_id = $1 AND status = 'uploaded'", userID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats documents: %w", err)
	}

	return &stats, nil
}
