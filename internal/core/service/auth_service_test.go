package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/pkg/config"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	creates int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.creates++
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, &domain.DuplicateError{Field: "email", Value: user.Email}
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "u" + string(rune('0'+len(r.users)))
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.Active {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, fields map[string]any) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, domain.ErrUserNotFound
	}
	if v, ok := fields["name"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["email"].(string); ok {
		u.Email = v
	}
	if v, ok := fields["photo"].(string); ok {
		u.Photo = v
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordResetToken = tokenHash
	u.PasswordResetExpires = &expires
	return nil
}

func (r *stubUserRepo) ClearResetToken(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return nil
}

func (r *stubUserRepo) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, newHash string, changedAt time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken == tokenHash && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			u.PasswordHash = newHash
			u.PasswordChangedAt = &changedAt
			u.PasswordResetToken = ""
			u.PasswordResetExpires = nil
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrInvalidResetToken
}

type stubNotifier struct {
	sent []ports.Message
	err  error
}

func (n *stubNotifier) Send(_ context.Context, msg ports.Message) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAuthService(repo *stubUserRepo, n *stubNotifier) (*AuthService, *clock) {
	clk := &clock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	cfg := config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTExpiresIn:  time.Hour,
		BcryptCost:    bcrypt.MinCost,
		ResetTokenTTL: 10 * time.Minute,
	}
	svc := NewAuthService(repo, n, cfg, "http://localhost:8080", zerolog.Nop())
	svc.now = clk.Now
	return svc, clk
}

func signUp(t *testing.T, svc *AuthService, email string) (string, *domain.User) {
	t.Helper()
	token, user, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Name: "Jonas", Email: email, Password: "pass1234", PasswordConfirm: "pass1234",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	return token, user
}

func TestAuthService_SignUp_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, &stubNotifier{})

	token, user := signUp(t, svc, " Jonas@Example.com ")

	if token == "" {
		t.Fatalf("expected token")
	}
	if user.Email != "jonas@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Role != domain.RoleUser || !user.Active {
		t.Fatalf("unexpected role/active: %s %v", user.Role, user.Active)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_SignUp_MismatchNeverPersists(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, &stubNotifier{})

	_, _, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Name: "Jonas", Email: "a@b.io", Password: "pass1234", PasswordConfirm: "pass12345",
	})
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no persistence, got %d creates", repo.creates)
	}
}

func TestAuthService_SignUp_ShortPassword(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo(), &stubNotifier{})

	_, _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "a@b.io", Password: "short", PasswordConfirm: "short"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthService_SignIn(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, &stubNotifier{})
	signUp(t, svc, "jonas@example.com")

	if _, _, err := svc.SignIn(context.Background(), "", "pass1234"); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "jonas@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "nobody@example.com", "pass1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	token, user, err := svc.SignIn(context.Background(), "JONAS@example.com", "pass1234")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if token == "" || user.Email != "jonas@example.com" {
		t.Fatalf("unexpected sign-in result: %q %+v", token, user)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc, clk := newTestAuthService(repo, &stubNotifier{})
	token, user := signUp(t, svc, "jonas@example.com")

	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}

	clk.Advance(2 * time.Hour)
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestAuthService_Authenticate_DeactivatedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, &stubNotifier{})
	token, user := signUp(t, svc, "jonas@example.com")

	_ = repo.Deactivate(context.Background(), user.ID)

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrTokenUserGone) {
		t.Fatalf("expected ErrTokenUserGone, got %v", err)
	}
}

func TestAuthService_Authenticate_RejectsTokensBeforePasswordChange(t *testing.T) {
	repo := newStubUserRepo()
	svc, clk := newTestAuthService(repo, &stubNotifier{})
	oldToken, user := signUp(t, svc, "jonas@example.com")

	clk.Advance(5 * time.Second)
	newToken, _, err := svc.UpdatePassword(context.Background(), user.ID, "pass1234", "newpass123", "newpass123")
	if err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), oldToken); !errors.Is(err, domain.ErrPasswordChanged) {
		t.Fatalf("expected ErrPasswordChanged for old token, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), newToken); err != nil {
		t.Fatalf("expected token issued with the change to be valid, got %v", err)
	}
}

func TestAuthService_UpdatePassword_WrongCurrent(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, &stubNotifier{})
	_, user := signUp(t, svc, "jonas@example.com")

	_, _, err := svc.UpdatePassword(context.Background(), user.ID, "not-it", "newpass123", "newpass123")
	if !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestAuthService_UpdatePassword_UserGone(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, &stubNotifier{})
	_, user := signUp(t, svc, "jonas@example.com")
	delete(repo.users, user.ID)

	_, _, err := svc.UpdatePassword(context.Background(), user.ID, "pass1234", "newpass123", "newpass123")
	if !errors.Is(err, domain.ErrTokenUserGone) {
		t.Fatalf("expected ErrTokenUserGone, got %v", err)
	}
}

var resetLink = regexp.MustCompile(`reset-password/([0-9a-f]{64})`)

func requestReset(t *testing.T, svc *AuthService, n *stubNotifier, email string) string {
	t.Helper()
	if err := svc.ForgotPassword(context.Background(), email); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	m := resetLink.FindStringSubmatch(n.sent[len(n.sent)-1].Body)
	if m == nil {
		t.Fatalf("reset link not found in %q", n.sent[len(n.sent)-1].Body)
	}
	return m[1]
}

func TestAuthService_ResetPassword_TokenWorksOnce(t *testing.T) {
	repo := newStubUserRepo()
	n := &stubNotifier{}
	svc, _ := newTestAuthService(repo, n)
	_, user := signUp(t, svc, "jonas@example.com")

	token := requestReset(t, svc, n, "jonas@example.com")

	stored := repo.users[user.ID].PasswordResetToken
	if stored == "" || stored == token {
		t.Fatalf("expected hashed token to be stored, got %q", stored)
	}

	if _, _, err := svc.ResetPassword(context.Background(), token, "brandnew1", "brandnew1"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if _, _, err := svc.ResetPassword(context.Background(), token, "another11", "another11"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken on reuse, got %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "jonas@example.com", "brandnew1"); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	repo := newStubUserRepo()
	n := &stubNotifier{}
	svc, clk := newTestAuthService(repo, n)
	signUp(t, svc, "jonas@example.com")

	token := requestReset(t, svc, n, "jonas@example.com")
	clk.Advance(11 * time.Minute)

	if _, _, err := svc.ResetPassword(context.Background(), token, "brandnew1", "brandnew1"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo(), &stubNotifier{})

	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ForgotPassword_DeliveryFailureWithdrawsToken(t *testing.T) {
	repo := newStubUserRepo()
	n := &stubNotifier{}
	svc, _ := newTestAuthService(repo, n)
	_, user := signUp(t, svc, "jonas@example.com")

	n.err = errors.New("smtp down")
	err := svc.ForgotPassword(context.Background(), "jonas@example.com")
	if !errors.Is(err, domain.ErrNotificationFailed) {
		t.Fatalf("expected ErrNotificationFailed, got %v", err)
	}
	if u := repo.users[user.ID]; u.PasswordResetToken != "" || u.PasswordResetExpires != nil {
		t.Fatalf("expected reset token to be cleared, got %+v", u)
	}
}
