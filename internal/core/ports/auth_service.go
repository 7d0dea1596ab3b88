package ports

import (
	"context"

	"github.com/natours/booking-api/internal/core/domain"
)

// SignUpInput is the registration payload.
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthService covers the credential lifecycle. Operations that establish a
// session return a freshly issued token.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (string, *domain.User, error)
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) (string, *domain.User, error)
	UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (string, *domain.User, error)
}

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
