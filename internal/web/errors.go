package web

// errors.go provides unified JSON error responses. Technical details are
// logged server-side with the request id; clients receive the normalized
// code and message only.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/logging"
	"github.com/finvolo/ledger/internal/parse"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError logs the technical error and writes a normalized JSON error.
// Parser structural errors keep their own message, since they are the only
// errors permitted to fail a whole request before any row is processed.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	code := apperr.CodeValidation
	message := err.Error()

	var insufficient *parse.InsufficientColumnsError
	var missing *parse.MissingColumnsError
	switch {
	case errors.Is(err, parse.ErrEmptyInput),
		errors.As(err, &insufficient),
		errors.As(err, &missing):
		// Structural parse errors pass through as-is.
	default:
		app := apperr.Normalize(err)
		code = app.Code
		message = app.Message
	}

	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"code", code,
		"error", err.Error(),
	)

	respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    code,
		Message: message,
	})
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
