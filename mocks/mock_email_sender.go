package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendVerificationEmail(ctx context.Context, toEmail, toName, language, verificationToken string) error {
	args := m.Called(ctx, toEmail, toName, language, verificationToken)
	return args.Error(0)
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, toEmail, toName, language, resetToken string) error {
	args := m.Called(ctx, toEmail, toName, language, resetToken)
	return args.Error(0)
}

func (m *MockEmailSender) SendAnalysisCompletedEmail(ctx context.Context, msg port.AnalysisCompletedEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
