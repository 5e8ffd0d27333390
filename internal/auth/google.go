package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleUser is the slice of a verified Google ID-token payload the auth
// service cares about. Email doubles as the local account id, matching the
// register form where users sign up with an email-like identifier.
type GoogleUser struct {
	Subject string // Google's stable account id ("sub" claim)
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates ID tokens posted by the Google Sign-In button.
//
// The frontend never sends us an authorization code — Google's JS SDK hands
// it a signed ID token (a JWT issued by accounts.google.com) and the
// frontend forwards that credential to POST /auth/google. Our only job is
// to verify the signature and audience and read the profile claims.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleUser, error)
}

// googleVerifier is the production implementation backed by
// google.golang.org/api/idtoken, which fetches and caches Google's public
// signing keys.
type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier bound to the OAuth client id the
// token must be issued for.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(ctx context.Context, credential string) (*GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, credential, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying Google ID token: %w", err)
	}

	user := &GoogleUser{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}
	if user.Email == "" {
		return nil, fmt.Errorf("auth: Google token carries no email claim")
	}

	return user, nil
}

func claimString(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}
