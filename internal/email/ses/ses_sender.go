package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"docanalyzer/internal/email"
	"docanalyzer/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendVerificationEmail(ctx context.Context, toEmail, toName, language, verificationToken string) error {
	return s.send(ctx, toEmail, email.VerificationMessage(s.frontendURL, toName, language, verificationToken))
}

func (s *sesSender) SendPasswordResetEmail(ctx context.Context, toEmail, toName, language, resetToken string) error {
	return s.send(ctx, toEmail, email.PasswordResetMessage(s.frontendURL, toName, language, resetToken))
}

func (s *sesSender) SendAnalysisCompletedEmail(ctx context.Context, msg port.AnalysisCompletedEmail) error {
	return s.send(ctx, msg.ToEmail, email.AnalysisCompletedMessage(s.frontendURL, msg))
}

func (s *sesSender) send(ctx context.Context, toEmail string, msg email.Message) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	charset := "UTF-8"

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &msg.Subject, Charset: &charset},
				Body: &types.Body{
					Html: &types.Content{Data: &msg.HTML, Charset: &charset},
					Text: &types.Content{Data: &msg.Text, Charset: &charset},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
