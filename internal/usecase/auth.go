package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/email"
	"github.com/zazaborisovi/laptomania/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost      = 12
	verificationTTL = 24 * time.Hour
)

type AuthUsecase struct {
	users      repository.UserRepository
	email      email.Sender
	apiBaseURL string
	logger     *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, apiBaseURL string, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		email:      emailSender,
		apiBaseURL: apiBaseURL,
		logger:     logger.With("component", "auth_usecase"),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified local account and emails a one-time
// verification link. If the email cannot be dispatched the code is
// rolled back and the whole call fails — a registration without a
// deliverable verification email is not a registration.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	passwordHash := string(hash)

	raw := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}
	code := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(verificationTTL)

	user, err := u.users.Create(ctx, &domain.User{
		Name:                  input.Name,
		Email:                 strings.ToLower(input.Email),
		PasswordHash:          &passwordHash,
		Role:                  domain.RoleUser,
		IsVerified:            false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expiresAt,
	})
	if err != nil {
		return nil, err
	}

	link := u.apiBaseURL + "/auth/verify/" + code
	if err := u.email.Send(ctx, user.Email, "verify your email", verificationHTML(user.Name, link)); err != nil {
		u.logger.ErrorContext(ctx, "dispatch verification email", "user_id", user.ID, "error", err)
		if clearErr := u.users.ClearVerificationCode(ctx, user.ID); clearErr != nil {
			u.logger.ErrorContext(ctx, "roll back verification code", "user_id", user.ID, "error", clearErr)
		}
		return nil, domain.ErrEmailDispatch
	}

	return user, nil
}

// Verify consumes a verification code. Unknown, already-used and
// expired codes all come back as domain.ErrInvalidCode.
func (u *AuthUsecase) Verify(ctx context.Context, code string) (*domain.User, error) {
	user, err := u.users.ConsumeVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCode) {
			return nil, domain.ErrInvalidCode
		}
		return nil, fmt.Errorf("consume verification code: %w", err)
	}
	return user, nil
}

// Login checks a local password. Unknown emails, OAuth-only accounts
// and wrong passwords are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (u *AuthUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func verificationHTML(name, link string) string {
	return fmt.Sprintf(
		`<h1>Welcome to Laptomania, %s!</h1>
<p>Please verify your email address by clicking the link below (expires in 24 hours):</p>
<p><a href="%s">Verify Email Address</a></p>
<p>If the button doesn't work, copy and paste this link into your browser:</p>
<p>%s</p>
<p>If you didn't create an account with Laptomania, please ignore this email.</p>`,
		name, link, link,
	)
}
