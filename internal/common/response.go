package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data wraps v in the canonical {"data": ...} envelope.
func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, map[string]any{"data": v})
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteError renders err using its Kind. Internal errors never expose their cause.
func WriteError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	status := kind.HTTPStatus()
	var appErr *AppError
	if errors.As(err, &appErr) && kind != KindInternal {
		code := appErr.Code
		if code == "" {
			code = kind.DefaultCode()
		}
		message := appErr.Message
		if message == "" {
			message = http.StatusText(status)
		}
		JSONError(w, status, code, message, appErr.Details)
		return
	}
	switch kind {
	case KindNotFound:
		JSONError(w, status, kind.DefaultCode(), "resource not found", nil)
	case KindConflict:
		JSONError(w, status, kind.DefaultCode(), "resource already exists", nil)
	case KindInvalidArgument:
		JSONError(w, status, kind.DefaultCode(), "invalid reference or missing field", nil)
	default:
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
