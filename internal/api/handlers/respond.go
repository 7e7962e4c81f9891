package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"propradar/internal/infrastructure/store"
)

// errorBody is the error half of the response envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope wraps every API response so clients can branch on a single
// success flag.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

// respondStoreError maps store errors onto the right HTTP status.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, "conflict", "concurrent update conflict, retry the request")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
