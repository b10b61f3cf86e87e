package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"docanalyzer/internal/email"
	"docanalyzer/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs the rendered emails instead of sending them.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendVerificationEmail(_ context.Context, toEmail, toName, language, verificationToken string) error {
	s.logMessage(toEmail, toName, email.VerificationMessage(s.frontendURL, toName, language, verificationToken))
	return nil
}

func (s *noopSender) SendPasswordResetEmail(_ context.Context, toEmail, toName, language, resetToken string) error {
	s.logMessage(toEmail, toName, email.PasswordResetMessage(s.frontendURL, toName, language, resetToken))
	return nil
}

func (s *noopSender) SendAnalysisCompletedEmail(_ context.Context, msg port.AnalysisCompletedEmail) error {
	s.logMessage(msg.ToEmail, msg.ToName, email.AnalysisCompletedMessage(s.frontendURL, msg))
	return nil
}

func (s *noopSender) logMessage(toEmail, toName string, msg email.Message) {
	log.Info().
		Str("to", toEmail).
		Str("name", toName).
		Str("subject", msg.Subject).
		Str("link", msg.Link).
		Msg("[NOOP EMAIL]")
}
