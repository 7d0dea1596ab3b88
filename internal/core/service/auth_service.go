package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/pkg/config"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	resetTokenBytes   = 32
	defaultPhoto      = "default.jpg"
)

// AuthService implements registration, login, token authentication and the
// password reset flow.
type AuthService struct {
	users     ports.UserRepository
	notifier  ports.Notifier
	tokens    *TokenIssuer
	creds     *Credentials
	resetTTL  time.Duration
	publicURL string
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, notifier ports.Notifier, cfg config.AuthConfig, publicURL string, log zerolog.Logger) *AuthService {
	s := &AuthService{
		users:     users,
		notifier:  notifier,
		creds:     NewCredentials(cfg.BcryptCost),
		resetTTL:  cfg.ResetTokenTTL,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
	if s.resetTTL <= 0 {
		s.resetTTL = 10 * time.Minute
	}
	s.tokens = NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn, func() time.Time { return s.now() })
	return s
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (string, *domain.User, error) {
	if err := checkNewPassword(in.Password, in.PasswordConfirm); err != nil {
		return "", nil, err
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return "", nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Photo:        defaultPhoto,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return s.session(created)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, domain.ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.creds.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

// Authenticate verifies the token, loads its user and rejects tokens issued
// before the user's last password change.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenUserGone
		}
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, domain.ErrPasswordChanged
	}
	return user, nil
}

// ForgotPassword stores the digest of a fresh reset token and mails the
// plaintext to the user. If delivery fails the token is withdrawn.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	expires := s.now().Add(s.resetTTL).UTC()
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(token), expires); err != nil {
		return err
	}

	msg := ports.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Your password reset token (valid for %d min)", int(s.resetTTL.Minutes())),
		Body: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s/api/v1/users/reset-password/%s\n"+
				"If you didn't forget your password, please ignore this email.",
			s.publicURL, token),
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset email delivery failed")
		if cerr := s.users.ClearResetToken(ctx, user.ID); cerr != nil {
			s.log.Error().Err(cerr).Str("user_id", user.ID).Msg("failed to withdraw reset token")
		}
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}

	s.log.Info().Str("user_id", user.ID).Time("expires", expires).Msg("password reset token issued")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (string, *domain.User, error) {
	if token == "" {
		return "", nil, domain.ErrInvalidResetToken
	}
	if err := checkNewPassword(password, passwordConfirm); err != nil {
		return "", nil, err
	}

	hash, err := s.creds.Hash(password)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	user, err := s.users.ConsumeResetToken(ctx, hashResetToken(token), now.UTC(), hash, domain.PasswordChangeTime(now))
	if err != nil {
		return "", nil, err
	}
	return s.session(user)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (string, *domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrTokenUserGone
		}
		return "", nil, err
	}

	if !s.creds.Verify(current, user.PasswordHash) {
		return "", nil, domain.ErrIncorrectPassword
	}
	if err := checkNewPassword(password, passwordConfirm); err != nil {
		return "", nil, err
	}

	hash, err := s.creds.Hash(password)
	if err != nil {
		return "", nil, err
	}

	user.ChangePassword(hash, s.now())
	if err := s.users.UpdatePassword(ctx, user.ID, user.PasswordHash, *user.PasswordChangedAt); err != nil {
		return "", nil, err
	}
	return s.session(user)
}

func (s *AuthService) session(user *domain.User) (string, *domain.User, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// checkNewPassword runs before any hashing so a rejected request never
// touches bcrypt or storage.
func checkNewPassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordLength))
	}
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
