package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/export"
	"docanalyzer/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) RequestAnalysis(ctx context.Context, caller service.Caller, orderID uuid.UUID) ([]domain.Analysis, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Analysis), args.Error(1)
}

func (m *MockAnalysisService) RunAnalysis(ctx context.Context, analysis *domain.Analysis) {
	m.Called(ctx, analysis)
}

func (m *MockAnalysisService) ListByOrder(ctx context.Context, caller service.Caller, orderID uuid.UUID) ([]domain.Analysis, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Analysis), args.Error(1)
}

func (m *MockAnalysisService) GetByID(ctx context.Context, caller service.Caller, analysisID uuid.UUID) (*domain.Analysis, error) {
	args := m.Called(ctx, caller, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockAnalysisService) Retry(ctx context.Context, caller service.Caller, analysisID uuid.UUID) (*domain.Analysis, error) {
	args := m.Called(ctx, caller, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockAnalysisService) Export(ctx context.Context, caller service.Caller, orderID uuid.UUID, format export.Format) (*service.ExportFile, error) {
	args := m.Called(ctx, caller, orderID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

func (m *MockAnalysisService) Wait() {
	m.Called()
}
