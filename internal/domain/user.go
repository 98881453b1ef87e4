package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrInvalidCode        = errors.New("verification code is invalid or expired")
	ErrEmailDispatch      = errors.New("there was an error sending email")

	// OAuth reconciliation policy failures.
	ErrPasswordAccountExists   = errors.New("email is already registered with a password")
	ErrUnverifiedExternalEmail = errors.New("external account email is not verified")
)

// ProviderMismatchError is returned when an OAuth callback email is already
// on file under a different provider. Accounts are never linked silently.
type ProviderMismatchError struct {
	Existing Provider
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("email is already registered with %s", e.Existing)
}

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// RoleAllowed reports whether role is in the allow-list. An empty
// allow-list permits any authenticated user.
func RoleAllowed(role Role, allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGitHub   Provider = "github"
)

// User is a storefront account. Exactly one of PasswordHash and
// OAuthProvider is set: local accounts carry a bcrypt hash, OAuth
// accounts carry the provider plus its stable external id.
type User struct {
	ID           string
	Name         string
	Email        string // stored lower-cased; unique
	PasswordHash *string

	Role       Role
	IsVerified bool

	VerificationCode      *string
	VerificationExpiresAt *time.Time

	OAuthProvider *Provider
	OAuthID       *string
	AvatarURL     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
