package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/oauth"
	"github.com/zazaborisovi/laptomania/internal/usecase"
)

// ---- fakes ----

type fakeProvider struct {
	name         domain.Provider
	authCodeURL  func() string
	exchange     func(ctx context.Context, code string) (string, error)
	fetchProfile func(ctx context.Context, accessToken string) (*oauth.Profile, error)
}

func (p *fakeProvider) Name() domain.Provider { return p.name }
func (p *fakeProvider) AuthCodeURL() string   { return p.authCodeURL() }
func (p *fakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	return p.exchange(ctx, code)
}
func (p *fakeProvider) FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	return p.fetchProfile(ctx, accessToken)
}

// ---- helpers ----

var googleProfile = &oauth.Profile{
	ExternalID: "google-123",
	Email:      "Alice@Example.com",
	Name:       "Alice",
	AvatarURL:  "https://example.com/alice.png",
}

func happyGoogle(profile *oauth.Profile) *fakeProvider {
	return &fakeProvider{
		name:        domain.ProviderGoogle,
		authCodeURL: func() string { return "https://accounts.google.com/o/oauth2/v2/auth?x=y" },
		exchange: func(_ context.Context, code string) (string, error) {
			if code != "authcode" {
				return "", errors.New("bad code")
			}
			return "access-token", nil
		},
		fetchProfile: func(_ context.Context, accessToken string) (*oauth.Profile, error) {
			if accessToken != "access-token" {
				return nil, errors.New("bad token")
			}
			return profile, nil
		},
	}
}

// noUsers is a repo where every lookup misses.
func noUsers() *fakeUserRepo {
	return &fakeUserRepo{
		findByOAuth: func(_ context.Context, _ domain.Provider, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
}

// ---- AuthCodeURL ----

func TestAuthCodeURL_UnknownProvider(t *testing.T) {
	uc := usecase.NewOAuthUsecase(noUsers(), happyGoogle(googleProfile))

	if _, err := uc.AuthCodeURL(domain.ProviderFacebook); !errors.Is(err, usecase.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

// ---- Callback resolution ----

func TestCallback_CreatesVerifiedUserOnFirstLogin(t *testing.T) {
	repo := noUsers()
	var captured *domain.User
	repo.create = func(_ context.Context, user *domain.User) (*domain.User, error) {
		captured = user
		user.ID = "user-1"
		return user, nil
	}

	uc := usecase.NewOAuthUsecase(repo, happyGoogle(googleProfile))
	user, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID != "user-1" {
		t.Errorf("got user %q", user.ID)
	}
	if !captured.IsVerified {
		t.Error("oauth user must be created verified")
	}
	if captured.Email != "alice@example.com" {
		t.Errorf("email not lowercased: %q", captured.Email)
	}
	if captured.OAuthProvider == nil || *captured.OAuthProvider != domain.ProviderGoogle {
		t.Errorf("provider not stored: %+v", captured.OAuthProvider)
	}
	if captured.OAuthID == nil || *captured.OAuthID != googleProfile.ExternalID {
		t.Errorf("external id not stored: %+v", captured.OAuthID)
	}
	if captured.PasswordHash != nil {
		t.Error("oauth user must not carry a password hash")
	}
}

func TestCallback_ExternalIDMatchShortCircuits(t *testing.T) {
	existing := &domain.User{ID: "user-1", Email: "alice@example.com"}
	repo := noUsers()
	repo.findByOAuth = func(_ context.Context, provider domain.Provider, oauthID string) (*domain.User, error) {
		if provider == domain.ProviderGoogle && oauthID == googleProfile.ExternalID {
			return existing, nil
		}
		return nil, domain.ErrUserNotFound
	}
	repo.create = func(_ context.Context, _ *domain.User) (*domain.User, error) {
		t.Fatal("no user should be created")
		return nil, nil
	}

	uc := usecase.NewOAuthUsecase(repo, happyGoogle(googleProfile))
	user, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != existing.ID {
		t.Errorf("got user %q, want %q", user.ID, existing.ID)
	}
}

func TestCallback_PasswordAccountIsNeverConverted(t *testing.T) {
	hash := "$2a$12$not-a-real-hash"
	repo := noUsers()
	repo.findByEmail = func(_ context.Context, _ string) (*domain.User, error) {
		return &domain.User{ID: "user-1", Email: "alice@example.com", PasswordHash: &hash}, nil
	}
	repo.create = func(_ context.Context, _ *domain.User) (*domain.User, error) {
		t.Fatal("no user should be created")
		return nil, nil
	}

	uc := usecase.NewOAuthUsecase(repo, happyGoogle(googleProfile))
	_, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode")
	if !errors.Is(err, domain.ErrPasswordAccountExists) {
		t.Fatalf("expected ErrPasswordAccountExists, got %v", err)
	}
}

func TestCallback_DifferentProviderOnFileFailsWithMismatch(t *testing.T) {
	facebook := domain.ProviderFacebook
	repo := noUsers()
	repo.findByEmail = func(_ context.Context, _ string) (*domain.User, error) {
		return &domain.User{ID: "user-1", Email: "alice@example.com", OAuthProvider: &facebook}, nil
	}

	uc := usecase.NewOAuthUsecase(repo, happyGoogle(googleProfile))
	_, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode")

	var mismatch *domain.ProviderMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ProviderMismatchError, got %v", err)
	}
	if mismatch.Existing != domain.ProviderFacebook {
		t.Errorf("mismatch reports %q, want facebook", mismatch.Existing)
	}
}

func TestCallback_SameProviderEmailMatchReusesAccount(t *testing.T) {
	google := domain.ProviderGoogle
	existing := &domain.User{ID: "user-1", Email: "alice@example.com", OAuthProvider: &google}
	repo := noUsers()
	repo.findByEmail = func(_ context.Context, _ string) (*domain.User, error) {
		return existing, nil
	}

	uc := usecase.NewOAuthUsecase(repo, happyGoogle(googleProfile))
	user, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != existing.ID {
		t.Errorf("got user %q, want %q", user.ID, existing.ID)
	}
}

func TestCallback_UnverifiedExternalEmailRejected(t *testing.T) {
	unverified := false
	profile := *googleProfile
	profile.EmailVerified = &unverified

	repo := noUsers()
	repo.create = func(_ context.Context, _ *domain.User) (*domain.User, error) {
		t.Fatal("no user should be created")
		return nil, nil
	}

	uc := usecase.NewOAuthUsecase(repo, happyGoogle(&profile))
	_, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode")
	if !errors.Is(err, domain.ErrUnverifiedExternalEmail) {
		t.Fatalf("expected ErrUnverifiedExternalEmail, got %v", err)
	}
}

func TestCallback_ProfileFetchFailureCreatesNoUser(t *testing.T) {
	provider := happyGoogle(googleProfile)
	provider.fetchProfile = func(_ context.Context, _ string) (*oauth.Profile, error) {
		return nil, errors.New("profile endpoint 500")
	}

	repo := noUsers()
	repo.create = func(_ context.Context, _ *domain.User) (*domain.User, error) {
		t.Fatal("no user should be created when profile fetch fails")
		return nil, nil
	}

	uc := usecase.NewOAuthUsecase(repo, provider)
	if _, err := uc.Callback(context.Background(), domain.ProviderGoogle, "authcode"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCallback_UnknownProvider(t *testing.T) {
	uc := usecase.NewOAuthUsecase(noUsers(), happyGoogle(googleProfile))

	_, err := uc.Callback(context.Background(), domain.ProviderGitHub, "authcode")
	if !errors.Is(err, usecase.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}
