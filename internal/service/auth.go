// Package service holds the business rules, between the HTTP handlers and
// the repositories:
//
//	handler (HTTP) → service (rules, ownership) → repository (DB)
//	               ↘ auth / storage / relay
//
// Services never touch *http.Request or chi; handlers never touch SQL.
// Every method takes a context and returns an explicit error — handlers map
// those errors to status codes via the apperror sentinels.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// AuthService implements account registration and the two login paths
// (id/password and Google ID token).
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	google    auth.GoogleVerifier
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	google auth.GoogleVerifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		google:    google,
		logger:    logger,
	}
}

// RegisterInput carries the register-form fields.
type RegisterInput struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// AuthResult bundles the issued JWT with the authenticated user so the
// handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

const minPasswordLen = 6

// Register creates a normal (non-social) account. The login id must be
// unused; the repository reports that as a conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)

	switch {
	case in.ID == "":
		return nil, apperror.ValidationFailed("id", "id is required")
	case in.Password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	case len(in.Password) < minPasswordLen:
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	case in.Nickname == "":
		return nil, apperror.ValidationFailed("nickname", "nickname is required")
	case in.Name == "":
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		ID:           in.ID,
		PasswordHash: hash,
		Nickname:     in.Nickname,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         model.RoleGeneral,
		Provider:     model.ProviderGeneral,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("id", user.ID), slog.Int64("userNum", user.UserNum))
	return user, nil
}

// loginFailedMessage is deliberately identical for an unknown id and a wrong
// password, so the endpoint cannot be used to probe which ids exist.
const loginFailedMessage = "invalid id or password"

// Login authenticates an id/password pair and issues a JWT.
func (s *AuthService) Login(ctx context.Context, id, password string) (*AuthResult, error) {
	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		return nil, apperror.Unauthorized(loginFailedMessage)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Unauthorized(loginFailedMessage)
		}
		return nil, err
	}

	// Social accounts have no hash; Verify fails on the empty string, so
	// they fall through to the same message as a wrong password.
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(loginFailedMessage)
	}

	return s.issueToken(user)
}

// GoogleLogin verifies a Google ID-token credential and signs the user in,
// provisioning an account on first contact. Google's subject claim is
// stable, but we key accounts on the verified email so a user who later
// registers normally with the same address keeps a single identity.
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*AuthResult, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, apperror.ValidationFailed("credential", "credential is required")
	}

	gu, err := s.google.Verify(ctx, credential)
	if err != nil {
		return nil, apperror.Unauthorized("google sign-in could not be verified")
	}

	user, err := s.users.GetByID(ctx, gu.Email)
	switch {
	case err == nil:
		// Existing account, possibly one created via the register form.
	case apperror.IsNotFound(err):
		user = &model.User{
			ID:       gu.Email,
			Nickname: googleNickname(gu),
			Name:     gu.Name,
			Role:     model.RoleGeneral,
			Provider: model.ProviderGoogle,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("google user provisioned", slog.String("id", user.ID), slog.Int64("userNum", user.UserNum))
	default:
		return nil, err
	}

	return s.issueToken(user)
}

// Me returns the profile for the authenticated user.
func (s *AuthService) Me(ctx context.Context, userNum int64) (*model.User, error) {
	return s.users.GetByUserNum(ctx, userNum)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// googleNickname picks a display nickname for a provisioned Google account.
// The profile name wins; an account with no name gets the email local part
// suffixed with a short random tag to dodge nickname collisions.
func googleNickname(gu *auth.GoogleUser) string {
	if gu.Name != "" {
		return gu.Name
	}
	local, _, _ := strings.Cut(gu.Email, "@")
	return local + "-" + xid.New().String()[:8]
}
