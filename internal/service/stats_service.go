package service

import (
	"context"

	"github.com/google/uuid"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// StatsService provides dashboard totals.
type StatsService interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.Stats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context, userID uuid.UUID) (*domain.Stats, error) {
	return s.statsRepo.GetUserStats(ctx, userID)
}
