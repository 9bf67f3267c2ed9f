// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, bearer token verification
// and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/revocation"
	"github.com/google/uuid"
)

const msgEmailTaken = "The email has already been taken."

// seams for tests
var (
	hashPassword  = cryptox.HashPassword
	generateToken = auth.GenerateToken
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// UserService provides authentication-related operations:
// - Register: create users and mint their first token
// - Login: verify credentials and mint a token
// - Authorize: resolve a bearer token to its user
// - Logout: revoke a token before it expires
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	revocations                 revocation.Store
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, revocations revocation.Store, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		revocations:                 revocations,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// normalizeEmail makes addresses compare case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates in, creates a USER account and returns it with a token.
// The insert and token minting share a transaction, so a failure leaves no
// account behind.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	// uniqueness is checked whenever the address itself is well formed, so it
	// is reported together with the other field errors
	ve := validateStruct(in)
	if ve == nil || len(ve.Fields["email"]) == 0 {
		_, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
		switch {
		case err == nil:
			if ve == nil {
				ve = &ValidationError{}
			}
			ve.add("email", msgEmailTaken)
		case !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("lookup user: %w", err)
		}
	}
	if ve != nil {
		return nil, ve
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			ID:           uuid.NewString(),
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         models.RoleUser,
		})
		if err != nil {
			return err
		}

		token, expiresAt, err := generateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		result = &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, &ValidationError{Fields: map[string][]string{"email": {msgEmailTaken}}}
		}
		return nil, err
	}

	return result, nil
}

// Login checks the credentials and issues a fresh token. Unknown email and
// wrong password are indistinguishable: both return common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)

	if ve := validateStruct(in); ve != nil {
		return nil, ve
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = cryptox.ComparePassword(nil, in.Password)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.ComparePassword(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	token, expiresAt, err := generateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authorize resolves a bearer token to its user. Bad, expired, revoked tokens
// and tokens of deleted users all yield common.ErrorUnauthorized; storage
// failures are returned wrapped.
func (s *UserService) Authorize(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenRevoked)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	return user, claims, nil
}

// Logout revokes the token described by claims until it would expire.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return common.ErrInvalidToken
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
