package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/oauth"
	"github.com/zazaborisovi/laptomania/internal/repository"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

// OAuthUsecase reconciles provider callbacks to exactly one local user.
type OAuthUsecase struct {
	users     repository.UserRepository
	providers map[domain.Provider]oauth.Provider
}

func NewOAuthUsecase(users repository.UserRepository, providers ...oauth.Provider) *OAuthUsecase {
	byName := make(map[domain.Provider]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthUsecase{users: users, providers: byName}
}

func (u *OAuthUsecase) AuthCodeURL(name domain.Provider) (string, error) {
	p, ok := u.providers[name]
	if !ok {
		return "", ErrUnknownProvider
	}
	return p.AuthCodeURL(), nil
}

// Callback exchanges the authorization code, fetches the profile and
// resolves it to a user. The tie-break order is security-relevant:
// an email already on file under a different provider, or under a
// password account, always fails — accounts are never linked silently.
// No user is created unless both outbound calls succeeded.
func (u *OAuthUsecase) Callback(ctx context.Context, name domain.Provider, code string) (*domain.User, error) {
	p, ok := u.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}

	accessToken, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	return u.resolve(ctx, name, profile)
}

func (u *OAuthUsecase) resolve(ctx context.Context, name domain.Provider, profile *oauth.Profile) (*domain.User, error) {
	user, err := u.users.FindByOAuth(ctx, name, profile.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user by oauth id: %w", err)
	}

	user, err = u.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		switch {
		case user.OAuthProvider == nil:
			return nil, domain.ErrPasswordAccountExists
		case *user.OAuthProvider != name:
			return nil, &domain.ProviderMismatchError{Existing: *user.OAuthProvider}
		default:
			return user, nil
		}
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if profile.EmailVerified != nil && !*profile.EmailVerified {
		return nil, domain.ErrUnverifiedExternalEmail
	}

	provider := name
	externalID := profile.ExternalID
	var avatar *string
	if profile.AvatarURL != "" {
		avatar = &profile.AvatarURL
	}

	created, err := u.users.Create(ctx, &domain.User{
		Name:          profile.Name,
		Email:         strings.ToLower(profile.Email),
		Role:          domain.RoleUser,
		IsVerified:    true, // the provider already verified this email
		OAuthProvider: &provider,
		OAuthID:       &externalID,
		AvatarURL:     avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}
	return created, nil
}
