package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
)

// MockPaymentEventRepo is a mock implementation of port.PaymentEventRepository.
type MockPaymentEventRepo struct {
	mock.Mock
}

func (m *MockPaymentEventRepo) Record(ctx context.Context, event *domain.PaymentEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentEventRepo) Forget(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
