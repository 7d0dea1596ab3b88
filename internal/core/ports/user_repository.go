package ports

import (
	"context"
	"time"

	"github.com/natours/booking-api/internal/core/domain"
)

// UserRepository defines persistence for principals. Lookups never return
// deactivated users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs returns the public profile of every active user in ids.
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error
	UpdateProfile(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
	Deactivate(ctx context.Context, id string) error

	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	// ConsumeResetToken atomically matches an unexpired reset token, stores the
	// new password hash and clears the token. A token can succeed only once.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newHash string, changedAt time.Time) (*domain.User, error)
}
