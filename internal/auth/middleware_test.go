package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petlink/petlink/internal/model"
)

// echoHandler records whether it ran and what claims it saw.
type echoHandler struct {
	ran    bool
	claims *Claims
}

func (h *echoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ran = true
	h.claims, _ = ClaimsFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)
	tokenStr, err := tokens.Generate(testUser())
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantRan    bool
	}{
		{"valid token", "Bearer " + tokenStr, http.StatusOK, true},
		{"lowercase scheme", "bearer " + tokenStr, http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, false},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next := &echoHandler{}
			mw := RequireAuth(tokens)(next)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantRan, next.ran)
			if tc.wantRan {
				require.NotNil(t, next.claims)
				assert.Equal(t, int64(42), next.claims.UserNum)
			}
		})
	}
}

func TestRequireAuthExpiredMessage(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)
	tokenStr, err := tokens.GenerateWithDuration(testUser(), -time.Minute)
	require.NoError(t, err)

	next := &echoHandler{}
	mw := RequireAuth(tokens)(next)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// The frontend distinguishes an expired session from a bad token.
	assert.Contains(t, rec.Body.String(), "token expired")
	assert.False(t, next.ran)
}

func TestRequireRole(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	general, err := tokens.Generate(testUser())
	require.NoError(t, err)
	admin, err := tokens.Generate(&model.User{UserNum: 1, ID: "admin@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)

	chain := func(next http.Handler) http.Handler {
		return RequireAuth(tokens)(RequireRole(model.RoleAdmin)(next))
	}

	t.Run("general user is forbidden", func(t *testing.T) {
		next := &echoHandler{}
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/delete/missing/1", nil)
		req.Header.Set("Authorization", "Bearer "+general)
		rec := httptest.NewRecorder()
		chain(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, next.ran)
	})

	t.Run("admin passes", func(t *testing.T) {
		next := &echoHandler{}
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/delete/missing/1", nil)
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		chain(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, next.ran)
	})

	t.Run("role check without auth fails closed", func(t *testing.T) {
		next := &echoHandler{}
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/delete/missing/1", nil)
		rec := httptest.NewRecorder()
		RequireRole(model.RoleAdmin)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, next.ran)
	})
}
