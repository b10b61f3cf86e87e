package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/port"
)

const verificationTokenTTL = 24 * time.Hour

// RegisterInput is the DTO for self-registration.
type RegisterInput struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required"`
	FirstName         string `json:"first_name" binding:"required"`
	LastName          string `json:"last_name" binding:"required"`
	Company           string `json:"company"`
	PreferredLanguage string `json:"preferred_language"`
}

// RegisterOutput contains the results of a successful registration.
type RegisterOutput struct {
	User   *domain.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}

// RegistrationService covers sign-up and email verification.
type RegistrationService interface {
	// Register creates the account. requestLanguage is used when the input
	// carries no preferred language.
	Register(ctx context.Context, input RegisterInput, requestLanguage string) (*RegisterOutput, error)
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	ResendVerification(ctx context.Context, userID uuid.UUID) error
}

type registrationService struct {
	userRepo    port.UserRepository
	authSvc     AuthService
	emailSender port.EmailSender
	jwtCfg      config.JWTConfig
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	userRepo port.UserRepository,
	authSvc AuthService,
	emailSender port.EmailSender,
	jwtCfg config.JWTConfig,
) RegistrationService {
	return &registrationService{
		userRepo:    userRepo,
		authSvc:     authSvc,
		emailSender: emailSender,
		jwtCfg:      jwtCfg,
	}
}

func (s *registrationService) Register(ctx context.Context, input RegisterInput, requestLanguage string) (*RegisterOutput, error) {
	if len(input.Password) < 8 {
		return nil, domain.ErrWeakPassword
	}
	lang := i18n.Resolve(input.PreferredLanguage, "", requestLanguage)
	if input.PreferredLanguage != "" && !i18n.IsSupported(input.PreferredLanguage) {
		return nil, domain.ErrInvalidLanguage
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:             normalizeEmail(input.Email),
		PasswordHash:      string(hash),
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		Company:           strings.TrimSpace(input.Company),
		SubscriptionTier:  domain.TierStarter,
		PreferredLanguage: lang,
		Role:              domain.RoleUser,
		IsActive:          true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrDuplicateEmail propagates naturally
	}

	s.sendVerification(ctx, user)

	tokens, err := s.authSvc.IssueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	return &RegisterOutput{User: user, Tokens: tokens}, nil
}

func (s *registrationService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	claims, err := parseToken(s.jwtCfg.Secret, token, audienceEmailVerification)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return user, nil
	}

	if err := s.userRepo.SetEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("marking email verified: %w", err)
	}
	now := time.Now().UTC()
	user.EmailVerified = true
	user.EmailVerifiedAt = &now
	return user, nil
}

func (s *registrationService) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return domain.ErrEmailAlreadyVerified
	}
	s.sendVerification(ctx, user)
	return nil
}

// sendVerification is best-effort: a failed send never fails the request.
func (s *registrationService) sendVerification(ctx context.Context, user *domain.User) {
	token, _, err := signToken(s.jwtCfg, user, audienceEmailVerification, time.Now(), verificationTokenTTL)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).
			Msg("service.registrationService.sendVerification: signing token failed")
		return
	}
	if err := s.emailSender.SendVerificationEmail(ctx, user.Email, user.FullName(), user.PreferredLanguage, token); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).
			Msg("service.registrationService.sendVerification: sending email failed")
	}
}
