package service

import (
	"context"
	"strings"

	"github.com/codequest/backend/internal/domain"
	"github.com/go-playground/validator/v10"
)

// UserService serves profile reads and edits.
type UserService struct {
	accounts AccountStore
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(accounts AccountStore) *UserService {
	return &UserService{accounts: accounts, validate: newValidator()}
}

// List returns every account's public profile.
func (s *UserService) List(ctx context.Context) ([]domain.PublicProfile, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to list users", err)
	}
	profiles := make([]domain.PublicProfile, len(accounts))
	for i, a := range accounts {
		profiles[i] = a.Profile()
	}
	return profiles, nil
}

// UpdateProfile edits the caller's own profile. Empty name keeps the current one.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, targetID string, req *domain.UpdateProfileRequest) (*domain.Account, error) {
	if callerID != targetID {
		return nil, domain.ErrForbidden(domain.ReasonNotOwner, "You can only update your own profile")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	current, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound("User not found")
	}

	name := req.Name
	if name == "" {
		name = current.Name
	}
	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	updated, err := s.accounts.UpdateProfile(ctx, targetID, name, strings.TrimSpace(req.About), tags)
	if err != nil {
		return nil, domain.ErrInternal("failed to update profile", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("User not found")
	}
	return updated, nil
}
