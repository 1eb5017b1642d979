package requestctx

import (
	"context"

	"github.com/ayush/notes-app/backend/internal/models"
)

// userContextKey is the context key for the authenticated user.
type userContextKey struct{}

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(userContextKey{}).(*models.User)
	return user
}

// UserIDFromContext returns the authenticated user's identifier, or "".
func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}
