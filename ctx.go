package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithCurrentUser sets the CurrentUser in the given context
func WithCurrentUser(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// CurrentUserFromContext finds the user from the context.
func CurrentUserFromContext(ctx context.Context) (*CurrentUser, bool) {
	raw, ok := ctx.Value(userCtxKey).(*CurrentUser)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the SessionClaims in the given context
func WithClaimsContext(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the SessionClaims from the standard context
func GetClaims(ctx context.Context) (*SessionClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*SessionClaims)
	return raw, ok && raw != nil
}

// CurrentUserFromFiber reads the identity attached by CurrentUserMiddleware
func CurrentUserFromFiber(c *fiber.Ctx) (*CurrentUser, bool) {
	return CurrentUserFromContext(c.UserContext())
}

// CurrentUserFromRouter reads the identity from the request context, falling
// back to the claims CurrentUserMiddleware stored under contextKey.
func CurrentUserFromRouter(c router.Context, contextKey string) (*CurrentUser, bool) {
	if ctx := c.Context(); ctx != nil {
		if user, ok := CurrentUserFromContext(ctx); ok {
			return user, true
		}
	}

	claims, ok := c.Locals(contextKey).(*SessionClaims)
	if !ok || claims == nil || claims.UserID() == "" {
		return nil, false
	}
	return CurrentUserFromClaims(claims), true
}
