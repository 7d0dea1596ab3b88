package ports

import (
	"context"

	"github.com/natours/booking-api/internal/core/domain"
)

// UserService manages the signed-in user's own account.
type UserService interface {
	Me(ctx context.Context, id string) (*domain.User, error)
	UpdateMe(ctx context.Context, id string, body map[string]any) (*domain.User, error)
	DeleteMe(ctx context.Context, id string) error
}
