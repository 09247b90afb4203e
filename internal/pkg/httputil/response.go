// Package httputil provides HTTP response helpers and shared middleware.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON writes a raw JSON response without envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse is the body of a 400 response listing every violated rule.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// Error writes a JSON response with {"message": ...} body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Message: message})
}

// ValidationErrors writes a 400 response with {"errors": [...]} body.
func ValidationErrors(w http.ResponseWriter, messages []string) {
	if messages == nil {
		messages = []string{}
	}
	JSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: messages})
}
