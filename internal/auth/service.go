package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justgold/justgold-backend/internal/users"
	pkgauth "github.com/justgold/justgold-backend/pkg/auth"
	"github.com/justgold/justgold-backend/pkg/config"
	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/justgold/justgold-backend/pkg/security"
	"gorm.io/gorm"
)

const emailUniqueConstraint = "users_email_key"

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string
	Password string
}

// UserDTO is the public shape of a user.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResult bundles the token with the authenticated user.
type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// Service handles registration and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

type service struct {
	repo   *users.Repository
	jwtCfg config.JWTConfig
	now    func() time.Time
	logg   *logger.Logger
}

func NewService(repo *users.Repository, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, now: time.Now, logg: logg}, nil
}

// Register creates a user with a bcrypt-hashed password. Duplicate
// emails surface as a conflict.
func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created, err := s.repo.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	})
	if err != nil {
		if db.IsUniqueViolation(err, emailUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
	}

	dto := newUserDTO(created)
	return &dto, nil
}

// Login verifies the password and mints an access token.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	if !security.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginResult{Token: token, User: newUserDTO(user)}, nil
}

func newUserDTO(user *models.User) UserDTO {
	return UserDTO{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}
