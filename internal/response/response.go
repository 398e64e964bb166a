// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard API response envelope. Error carries a stable
// machine-readable code (e.g. "NOT_FOUND", "SIZE_MISMATCH"); Message is the
// human-readable summary; Issues lists field-level validation problems.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Issues  []string    `json:"issues,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail writes an error response with the given status, code and message.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Envelope{Success: false, Error: code, Message: message})
}

// BadRequest writes a 400 response with code BAD_REQUEST.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

// ValidationFailed writes a 400 response carrying field-level issues.
func ValidationFailed(w http.ResponseWriter, issues []string) {
	JSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "BAD_REQUEST",
		Message: "validation failed",
		Issues:  issues,
	})
}

// Unauthorized writes a 401 response with code UNAUTHORIZED.
func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden writes a 403 response with code FORBIDDEN.
func Forbidden(w http.ResponseWriter, message string) {
	Fail(w, http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound writes a 404 response with the given code (e.g. "ALBUM_NOT_FOUND").
func NotFound(w http.ResponseWriter, code, message string) {
	Fail(w, http.StatusNotFound, code, message)
}

// Conflict writes a 409 response with the given code (e.g. "ALREADY_CONFIRMED").
func Conflict(w http.ResponseWriter, code, message string) {
	Fail(w, http.StatusConflict, code, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
