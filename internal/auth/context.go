package auth

import (
	"context"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type authContextKey struct{}

// WithAuth attaches an authenticated principal to the context.
func WithAuth(ctx context.Context, auth models.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the authenticated principal from the context.
func FromContext(ctx context.Context) (models.AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey{}).(models.AuthContext)
	return auth, ok
}
