// Package auth provides token issuance/verification, password hashing, and
// the HTTP middleware that gates protected routes.
//
// The token is a signed HS256 JWT. All the information the handlers need —
// the login id, the numeric user_num used for ownership checks, the
// nickname, and the role — travels inside the claims, so verifying a
// request never touches the database.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/petlink/petlink/internal/model"
)

const issuer = "petlink"

// tokenTTL keeps sessions short-lived; the frontend re-authenticates after
// expiry.
const tokenTTL = time.Hour

// Sentinel errors so the middleware can tell an expired token (which gets
// its own message, useful to the frontend) from every other invalid token
// (which deliberately does not reveal what was wrong with it).
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   string `json:"userId"`
	UserNum  int64  `json:"userNum"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the privileged role.
func (c *Claims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// CanModify is the single ownership rule of the whole API: a resource may
// be mutated by the user whose user_num it stores, or by an admin.
func (c *Claims) CanModify(ownerNum int64) bool {
	return c.UserNum == ownerNum || c.IsAdmin()
}

// Allowed is the declarative role check used by RequireRole. It is a pure
// function of the claims so it can be called (and tested) outside any
// middleware chain.
func Allowed(c *Claims, requiredRole string) bool {
	return c != nil && c.Role == requiredRole
}

// TokenService signs and verifies bearer tokens with a shared HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Generate issues a signed token for the given user with the standard TTL.
func (s *TokenService) Generate(user *model.User) (string, error) {
	return s.GenerateWithDuration(user, tokenTTL)
}

// GenerateWithDuration issues a token with a custom expiry. Used by tests to
// mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(user *model.User, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		UserID:   user.ID,
		UserNum:  user.UserNum,
		Nickname: user.Nickname,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns its claims.
//
// Pinning the algorithm with WithValidMethods blocks algorithm-confusion
// attacks; WithIssuer rejects tokens minted by other apps sharing a secret.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if c.UserNum == 0 || c.UserID == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrTokenInvalid)
	}

	return c, nil
}
