package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

const resetTokenTTL = time.Hour

// ForgotPasswordInput is the DTO for forgot-password requests.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput is the DTO for reset-password requests.
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PasswordResetService defines the password reset contract.
type PasswordResetService interface {
	// ForgotPassword never reports whether the email exists.
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type passwordResetService struct {
	userRepo    port.UserRepository
	emailSender port.EmailSender
	jwtCfg      config.JWTConfig
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(
	userRepo port.UserRepository,
	emailSender port.EmailSender,
	jwtCfg config.JWTConfig,
) PasswordResetService {
	return &passwordResetService{
		userRepo:    userRepo,
		emailSender: emailSender,
		jwtCfg:      jwtCfg,
	}
}

func (s *passwordResetService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("service.passwordResetService.ForgotPassword: user lookup failed")
		}
		return nil
	}
	if !user.IsActive {
		return nil
	}

	token, jti, err := signToken(s.jwtCfg, user, audiencePasswordReset, time.Now(), resetTokenTTL)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).
			Msg("service.passwordResetService.ForgotPassword: signing reset token failed")
		return nil
	}

	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, jti); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).
			Msg("service.passwordResetService.ForgotPassword: storing reset token failed")
		return nil
	}

	if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, user.FullName(), user.PreferredLanguage, token); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).
			Msg("service.passwordResetService.ForgotPassword: sending reset email failed")
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if len(input.NewPassword) < 8 {
		return domain.ErrWeakPassword
	}
	claims, err := parseToken(s.jwtCfg.Secret, input.Token, audiencePasswordReset)
	if err != nil {
		return domain.ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.ResetPassword(ctx, claims.UserID, string(hash), claims.ID)
}
