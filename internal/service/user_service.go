package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/port"
)

// UpdateProfileInput is the DTO for profile updates. Nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName         *string                  `json:"first_name"`
	LastName          *string                  `json:"last_name"`
	Company           *string                  `json:"company"`
	PreferredLanguage *string                  `json:"preferred_language"`
	SubscriptionTier  *domain.SubscriptionTier `json:"subscription_tier"`
}

// UserService defines the user profile contract.
type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
}

type userService struct {
	repo port.UserRepository
}

// NewUserService creates a new UserService implementation.
func NewUserService(repo port.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Company != nil {
		user.Company = strings.TrimSpace(*input.Company)
	}
	if input.PreferredLanguage != nil {
		lang, ok := i18n.Normalize(*input.PreferredLanguage)
		if !ok {
			return nil, domain.ErrInvalidLanguage
		}
		user.PreferredLanguage = lang
	}
	if input.SubscriptionTier != nil {
		if !domain.ValidSubscriptionTiers[*input.SubscriptionTier] {
			return nil, domain.ErrInvalidTier
		}
		user.SubscriptionTier = *input.SubscriptionTier
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	return s.repo.List(ctx, offset, limit)
}
