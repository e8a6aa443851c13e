package app

import (
	"context"
	"strings"
	"time"

	"rcvj/internal/common"
	"rcvj/internal/domain/user"
	"rcvj/internal/security"
)

type Logger interface {
	Info(msg string)
	Error(msg string)
}

// AuthService authenticates against the users table. The seeded admin row
// is the single source of truth for the administrative login.
type AuthService struct {
	users    user.Repository
	jwt      *security.JWTProvider
	logger   Logger
	tokenTTL time.Duration
}

func NewAuthService(users user.Repository, jwt *security.JWTProvider, logger Logger, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger, tokenTTL: tokenTTL}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "username is required"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid request", fields)
	}
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeValidation, "invalid credentials", nil)
		}
		return nil, err
	}
	if !security.CheckPassword(password, account.PasswordHash) {
		return nil, common.NewError(common.CodeValidation, "invalid credentials", nil)
	}
	token, expiresAt, err := s.jwt.Generate(account.ID, account.Username, string(account.Role), s.tokenTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to issue token", err)
	}
	s.logInfo("login succeeded for " + account.Username)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: account}, nil
}

func (s *AuthService) Register(ctx context.Context, username, email, password string, role user.Role) (*user.User, error) {
	fields := map[string]string{}
	if strings.TrimSpace(username) == "" {
		fields["username"] = "username is required"
	}
	if !strings.Contains(email, "@") {
		fields["email"] = "valid email is required"
	}
	if len(password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid request", fields)
	}
	if role == "" {
		role = user.RoleAdmin
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	created, err := s.users.Create(ctx, user.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CurrentUser re-resolves the token's username against the users table so a
// removed account invalidates otherwise valid tokens.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*user.User, error) {
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "user not found for this token", err)
		}
		return nil, err
	}
	return account, nil
}

func (s *AuthService) logInfo(msg string) {
	if s.logger != nil {
		s.logger.Info(msg)
	}
}
