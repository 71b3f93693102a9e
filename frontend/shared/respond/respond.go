// Package respond writes the JSON envelope shared by the /tasker/api routes.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"gridstock/infrastructure/apperr"
)

// Envelope is the default response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK wraps data in a successful envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Error maps err onto a status code and a client-safe message.
// Unexpected errors are logged and reported with fallback.
func Error(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError && log != nil {
		log.Error(fallback, zap.Error(err))
	}
	JSON(w, status, Envelope{Success: false, Error: apperr.PublicMessage(err, fallback)})
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("body", "invalid JSON: %v", err)
	}
	return nil
}
