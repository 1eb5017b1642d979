package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/httpx"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/models"
	"github.com/ayush/notes-app/backend/internal/requestctx"
	"github.com/ayush/notes-app/backend/internal/store"
)

// TokenVerifier decodes an access token into a user identifier.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityStore resolves a verified user identifier to the current record.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// BearerToken returns the token segment of an Authorization header value,
// or "" when there is none.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// RequireAuth is middleware that validates the bearer token, re-reads the
// user it names and injects that user into the request context.
func RequireAuth(tokens TokenVerifier, users IdentityStore, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				httpx.Error(w, r, log, apperr.Unauthorized("Token is required"))
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				log.Warn(r.Context(), "token verification failed", "path", r.URL.Path, "err", err)
				httpx.Error(w, r, log, apperr.Forbidden("Invalid token"))
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					httpx.Error(w, r, log, apperr.Validation("User not found"))
					return
				}
				httpx.Error(w, r, log, apperr.Internal(err))
				return
			}

			ctx := requestctx.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
