package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create                  func(ctx context.Context, user *domain.User) (*domain.User, error)
	findByID                func(ctx context.Context, id string) (*domain.User, error)
	findByEmail             func(ctx context.Context, email string) (*domain.User, error)
	findByOAuth             func(ctx context.Context, provider domain.Provider, oauthID string) (*domain.User, error)
	consumeVerificationCode func(ctx context.Context, code string) (*domain.User, error)
	clearVerificationCode   func(ctx context.Context, userID string) error
	sweepExpired            func(ctx context.Context) (int64, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByOAuth(ctx context.Context, provider domain.Provider, oauthID string) (*domain.User, error) {
	return r.findByOAuth(ctx, provider, oauthID)
}

func (r *fakeUserRepo) ConsumeVerificationCode(ctx context.Context, code string) (*domain.User, error) {
	return r.consumeVerificationCode(ctx, code)
}

func (r *fakeUserRepo) ClearVerificationCode(ctx context.Context, userID string) error {
	return r.clearVerificationCode(ctx, userID)
}

func (r *fakeUserRepo) SweepExpiredVerificationCodes(ctx context.Context) (int64, error) {
	return r.sweepExpired(ctx)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, html string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, html string) error {
	return s.send(ctx, to, subject, html)
}

// ---- helpers ----

const testAPIBase = "http://localhost:8080"

func newAuthUsecase(repo *fakeUserRepo, sender *fakeEmailSender) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(repo, sender, testAPIBase, slog.Default())
}

var registerInput = usecase.RegisterInput{
	Name:     "Test User",
	Email:    "Test@Example.com",
	Password: "hunter2hunter2",
}

// ---- Register ----

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	var captured *domain.User

	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			captured = user
			user.ID = "user-1"
			return user, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return nil },
	}

	if _, err := newAuthUsecase(repo, sender).Register(context.Background(), registerInput); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.PasswordHash == nil || *captured.PasswordHash == registerInput.Password {
		t.Fatal("password was stored in plaintext or not at all")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*captured.PasswordHash), []byte(registerInput.Password)); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
	if captured.Email != "test@example.com" {
		t.Errorf("email not lowercased: %q", captured.Email)
	}
	if captured.IsVerified {
		t.Error("new local user must start unverified")
	}
}

func TestRegister_EmailLinkCarriesStoredCode(t *testing.T) {
	var storedCode string
	var emailHTML string

	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			storedCode = *user.VerificationCode
			user.ID = "user-1"
			return user, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, html string) error {
			emailHTML = html
			return nil
		},
	}

	if _, err := newAuthUsecase(repo, sender).Register(context.Background(), registerInput); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(storedCode) != 32 {
		t.Errorf("expected 32-char hex code, got %q", storedCode)
	}
	wantLink := testAPIBase + "/auth/verify/" + storedCode
	if !strings.Contains(emailHTML, wantLink) {
		t.Errorf("email body does not contain verification link %q", wantLink)
	}
}

func TestRegister_DispatchFailureRollsBackCode(t *testing.T) {
	var clearedUserID string

	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			user.ID = "user-1"
			return user, nil
		},
		clearVerificationCode: func(_ context.Context, userID string) error {
			clearedUserID = userID
			return nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("resend is down")
		},
	}

	_, err := newAuthUsecase(repo, sender).Register(context.Background(), registerInput)
	if !errors.Is(err, domain.ErrEmailDispatch) {
		t.Fatalf("expected ErrEmailDispatch, got %v", err)
	}
	if clearedUserID != "user-1" {
		t.Errorf("verification code was not rolled back, cleared id = %q", clearedUserID)
	}
}

func TestRegister_DuplicateEmailPassesThrough(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			t.Fatal("no email should be sent when create fails")
			return nil
		},
	}

	_, err := newAuthUsecase(repo, sender).Register(context.Background(), registerInput)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

// ---- Login ----

func localUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h := string(hash)
	return &domain.User{ID: "user-1", Email: "test@example.com", PasswordHash: &h, IsVerified: true}
}

func TestLogin_Succeeds(t *testing.T) {
	user := localUser(t, "hunter2hunter2")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}

	got, err := newAuthUsecase(repo, nil).Login(context.Background(), user.Email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got user %q, want %q", got.ID, user.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	user := localUser(t, "hunter2hunter2")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}

	_, err := newAuthUsecase(repo, nil).Login(context.Background(), user.Email, "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := newAuthUsecase(repo, nil).Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_OAuthOnlyAccountHasNoPassword(t *testing.T) {
	provider := domain.ProviderGoogle
	user := &domain.User{ID: "user-1", Email: "test@example.com", OAuthProvider: &provider}
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}

	_, err := newAuthUsecase(repo, nil).Login(context.Background(), user.Email, "anything")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ---- Verify ----

func TestVerify_ConsumesCodeOnce(t *testing.T) {
	claimed := false
	repo := &fakeUserRepo{
		consumeVerificationCode: func(_ context.Context, code string) (*domain.User, error) {
			if claimed {
				return nil, domain.ErrInvalidCode
			}
			claimed = true
			return &domain.User{ID: "user-1", IsVerified: true}, nil
		},
	}
	uc := newAuthUsecase(repo, nil)

	user, err := uc.Verify(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	if !user.IsVerified {
		t.Error("user not marked verified")
	}

	if _, err := uc.Verify(context.Background(), "code-1"); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("second verify: expected ErrInvalidCode, got %v", err)
	}
}

func TestVerify_UnknownCode(t *testing.T) {
	repo := &fakeUserRepo{
		consumeVerificationCode: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrInvalidCode
		},
	}

	if _, err := newAuthUsecase(repo, nil).Verify(context.Background(), "nope"); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}
