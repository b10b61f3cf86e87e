package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/service"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, caller service.Caller, input service.CreateOrderInput, requestLanguage string) (*domain.Order, error) {
	args := m.Called(ctx, caller, input, requestLanguage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, caller service.Caller, orderID uuid.UUID) (*domain.OrderDetail, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetail), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, caller service.Caller, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error) {
	args := m.Called(ctx, caller, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderService) Update(ctx context.Context, caller service.Caller, orderID uuid.UUID, input service.UpdateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, caller, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, caller service.Caller, orderID uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) History(ctx context.Context, caller service.Caller, orderID uuid.UUID, offset, limit int) ([]domain.OrderAudit, int, error) {
	args := m.Called(ctx, caller, orderID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OrderAudit), args.Int(1), args.Error(2)
}

func (m *MockOrderService) Pricing() service.PriceList {
	args := m.Called()
	return args.Get(0).(service.PriceList)
}
