// Package httputil writes JSON responses and error envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is an error with a fixed HTTP translation.
type Error struct {
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Description
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(status int, code, description string) *Error {
	return &Error{Status: status, Code: code, Description: description}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": code, "error_description": text}. Errors that
// are not an *Error become internal_error, and 500 responses never carry a
// description.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := map[string]string{"error": "internal_error"}
	var he *Error
	if errors.As(err, &he) {
		status = he.Status
		body["error"] = he.Code
		if status != http.StatusInternalServerError && he.Description != "" {
			body["error_description"] = he.Description
		}
	}
	WriteJSON(w, status, body)
}
