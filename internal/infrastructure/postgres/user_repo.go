package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zazaborisovi/laptomania/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, is_verified,
	verification_code, verification_expires_at,
	oauth_provider, oauth_id, avatar_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (
			name, email, password_hash, role, is_verified,
			verification_code, verification_expires_at,
			oauth_provider, oauth_id, avatar_url
		) VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.VerificationCode,
		user.VerificationExpiresAt,
		user.OAuthProvider,
		user.OAuthID,
		user.AvatarURL,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByOAuth(ctx context.Context, provider domain.Provider, oauthID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = $1 AND oauth_id = $2`
	return scanUser(r.pool.QueryRow(ctx, query, provider, oauthID))
}

// ConsumeVerificationCode claims a code in a single statement so two
// concurrent verify calls can never both succeed.
func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, code string) (*domain.User, error) {
	query := `
		UPDATE users
		SET    is_verified             = TRUE,
		       verification_code       = NULL,
		       verification_expires_at = NULL,
		       updated_at              = NOW()
		WHERE  verification_code       = $1
		  AND  verification_expires_at > NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) ClearVerificationCode(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		SET verification_code = NULL, verification_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear verification code: %w", err)
	}
	return nil
}

func (r *UserRepository) SweepExpiredVerificationCodes(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		SET verification_code = NULL, verification_expires_at = NULL, updated_at = NOW()
		WHERE is_verified = FALSE
		  AND verification_code IS NOT NULL
		  AND verification_expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("sweep verification codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.VerificationCode,
		&u.VerificationExpiresAt,
		&u.OAuthProvider,
		&u.OAuthID,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
