package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-authsvc/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// ContextEnricherAdapter stores the claims and the derived CurrentUser
// in the request user context.
func ContextEnricherAdapter(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	sessionClaims, ok := claims.(*SessionClaims)
	if !ok {
		return ctx
	}
	ctx = WithClaimsContext(ctx, sessionClaims)
	return WithCurrentUser(ctx, CurrentUserFromClaims(sessionClaims))
}

// CurrentUserMiddleware attaches the identity of a valid session to the request.
// A missing, undecodable or unverifiable session leaves the request anonymous.
func CurrentUserMiddleware(carrier *SessionCarrier, validator TokenValidator, contextKey string, logger Logger, listeners ...ValidationListener) fiber.Handler {
	logger = resolveLogger(logger)
	return jwtware.New(jwtware.Config{
		ContextKey:          contextKey,
		Extractors:          []jwtware.JWTExtractor{carrier.Extract},
		TokenValidator:      validator,
		ContextEnricher:     ContextEnricherAdapter,
		ValidationListeners: listeners,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if c.Cookies(carrier.Name) != "" {
				logger.Debug("session ignored", "path", c.Path(), "error", err)
			}
			return c.Next()
		},
	})
}

// RequireAuth rejects requests with no identity attached
func RequireAuth(contextKey string) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := CurrentUserFromRouter(ctx, contextKey); !ok {
				return ErrNotAuthorized
			}
			return hf(ctx)
		}
	}
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
