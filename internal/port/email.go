package port

import "context"

// AnalysisCompletedEmail carries what the completion notice shows.
type AnalysisCompletedEmail struct {
	ToEmail    string
	ToName     string
	Language   string
	OrderID    string
	OrderTitle string
	Succeeded  int
	Failed     int
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toEmail, toName, language, verificationToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, language, resetToken string) error
	SendAnalysisCompletedEmail(ctx context.Context, msg AnalysisCompletedEmail) error
}
