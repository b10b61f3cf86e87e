package mocks

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/service"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, caller service.Caller, orderID uuid.UUID, files []*multipart.FileHeader) ([]domain.Document, error) {
	args := m.Called(ctx, caller, orderID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListByOrder(ctx context.Context, caller service.Caller, orderID uuid.UUID) ([]domain.Document, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, caller service.Caller, docID uuid.UUID) (*service.DocumentWithURL, error) {
	args := m.Called(ctx, caller, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentWithURL), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, caller service.Caller, docID uuid.UUID) error {
	args := m.Called(ctx, caller, docID)
	return args.Error(0)
}
