package handler

// Response helpers. Every response, success or failure, carries the
// {success, message} pair the frontend keys on; endpoint-specific payloads
// embed envelope and add their own fields.
//
// writeError is the single place where domain errors become status codes.
// The service layer returns apperror sentinels; errors.Is walks wrapped
// chains, so a fmt.Errorf("...: %w", apperror.NotFound(...)) still maps
// to 404.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/repository"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func success(message string) envelope {
	return envelope{Success: true, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrUpstream):
		status = http.StatusBadGateway
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		// Unclassified errors get logged with detail but answered generically.
		slog.Error("unhandled error", slog.String("error", err.Error()))
	}

	writeJSON(w, status, envelope{Success: false, Message: message})
}

// decodeJSON reads a JSON request body into dst, rejecting bodies over 1MB
// and trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}
	return nil
}

// pathID parses the {id}-style chi URL parameter named name.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, "must be a positive integer")
	}
	return id, nil
}

// listOptions reads optional limit/offset query parameters. The repository
// clamps them, so garbage just falls back to defaults.
func listOptions(r *http.Request) repository.ListOptions {
	var opts repository.ListOptions
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		opts.Offset = v
	}
	return opts
}
