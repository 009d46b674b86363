// internal/app/features/shared/api/api.go

// Package api holds the small JSON helpers the API features share:
// response writing, body decoding, and path-parameter parsing.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorResponse{Error: msg})
}

// Decode reads the request body into v. Bodies are capped at 1 MiB and
// unknown fields are rejected so typos in client payloads surface as 400s
// instead of silently dropped fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// URLParamID parses the named chi route parameter as an ObjectID.
func URLParamID(r *http.Request, name string) (primitive.ObjectID, error) {
	return ParseID(chi.URLParam(r, name))
}

// ParseID parses a hex ObjectID from a request body or query field.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errors.New("invalid id: " + raw)
	}
	return id, nil
}
