// Package handler contains the HTTP layer: request decoding, auth-claims
// plumbing, and response encoding. All business rules live in the service
// layer; a handler that grows an if-statement about ownership or validation
// is in the wrong file.
package handler

import (
	"net/http"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/service"
)

// AuthHandler serves registration, the two login paths, and the profile
// endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type userResponse struct {
	envelope
	User *model.User `json:"user"`
}

type loginResponse struct {
	envelope
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{envelope: success("registration successful"), User: user})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), in.ID, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{envelope: success("login successful"), Token: result.Token, User: result.User})
}

// GoogleLogin handles POST /auth/google. The frontend posts the ID-token
// credential it got from Google Identity Services.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Credential string `json:"credential"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.GoogleLogin(r.Context(), in.Credential)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{envelope: success("login successful"), Token: result.Token, User: result.User})
}

// Me handles GET /api/users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	user, err := h.auth.Me(r.Context(), claims.UserNum)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{envelope: success("ok"), User: user})
}
