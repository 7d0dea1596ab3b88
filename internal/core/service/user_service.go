package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// UserService serves the signed-in user's own profile. Administrative CRUD
// goes through a plain ResourceService.
type UserService struct {
	users    ports.UserRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, validate: validator.New(), logger: logger}
}

func (s *UserService) Me(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateMe applies the permitted profile fields in body. Password fields are
// rejected outright; anything else outside the allow-list is dropped.
func (s *UserService) UpdateMe(ctx context.Context, id string, body map[string]any) (*domain.User, error) {
	if _, ok := body["password"]; ok {
		return nil, domain.ErrPasswordUpdateNotAllowed
	}
	if _, ok := body["passwordConfirm"]; ok {
		return nil, domain.ErrPasswordUpdateNotAllowed
	}

	fields := filterFields(body, "name", "email", "photo")
	for k, v := range fields {
		str, ok := v.(string)
		if !ok {
			return nil, domain.NewValidationError(k + " must be a string")
		}
		str = strings.TrimSpace(str)
		switch k {
		case "name":
			if str == "" {
				return nil, domain.NewValidationError("name is required")
			}
		case "email":
			str = strings.ToLower(str)
			if err := s.validate.Var(str, "required,email"); err != nil {
				return nil, domain.NewValidationError("email must be a valid email")
			}
		}
		fields[k] = str
	}
	if len(fields) == 0 {
		return s.users.FindByID(ctx, id)
	}

	user, err := s.users.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Int("fields", len(fields)).Msg("profile updated")
	return user, nil
}

// DeleteMe deactivates the account. The record is kept.
func (s *UserService) DeleteMe(ctx context.Context, id string) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("account deactivated")
	return nil
}

// filterFields returns a new map holding only the allowed keys of src.
func filterFields(src map[string]any, allowed ...string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, k := range allowed {
		if v, ok := src[k]; ok {
			out[k] = v
		}
	}
	return out
}
