package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
)

// MockOrderAuditRepo is a mock implementation of port.OrderAuditRepository.
type MockOrderAuditRepo struct {
	mock.Mock
}

func (m *MockOrderAuditRepo) Create(ctx context.Context, entry *domain.OrderAudit) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOrderAuditRepo) ListByOrder(ctx context.Context, orderID uuid.UUID, offset, limit int) ([]domain.OrderAudit, int, error) {
	args := m.Called(ctx, orderID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OrderAudit), args.Int(1), args.Error(2)
}
