package repository

import (
	"context"

	"github.com/zazaborisovi/laptomania/internal/domain"
)

type UserRepository interface {
	// Create persists a new user. A duplicate email (or duplicate
	// provider/external-id pair) surfaces as domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByOAuth(ctx context.Context, provider domain.Provider, oauthID string) (*domain.User, error)

	// ConsumeVerificationCode atomically claims an unexpired code: the
	// user is marked verified and the code cleared in one statement so
	// a code can never be redeemed twice.
	ConsumeVerificationCode(ctx context.Context, code string) (*domain.User, error)
	ClearVerificationCode(ctx context.Context, userID string) error
	// SweepExpiredVerificationCodes nulls out codes past their expiry
	// on still-unverified users and returns how many rows were touched.
	SweepExpiredVerificationCodes(ctx context.Context) (int64, error)
}
