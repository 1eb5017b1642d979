// Package httpx holds the JSON envelope shared by every handler:
// {"error": false, ..., "message": "..."} on success and
// {"error": true, "message": "..."} on failure.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/logging"
)

// Fields are the payload keys of a success envelope.
type Fields map[string]any

const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes fields plus error=false and message.
func Success(w http.ResponseWriter, status int, message string, fields Fields) {
	body := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["error"] = false
	body["message"] = message
	WriteJSON(w, status, body)
}

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Error writes err as an error envelope. Internal failures are logged with
// their cause and reported to the client without detail.
func Error(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal && log != nil {
		log.Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
	}
	WriteJSON(w, e.Kind.HTTPStatus(), errorBody{Error: true, Message: e.Message})
}

// Decode reads a JSON body into v. An empty body decodes as an empty object
// so that field checks report the missing field rather than a syntax error.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	return nil
}
