package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

const identityLocal = "identity"

type identityCtxKey struct{}

// BearerAuth creates a Fiber middleware that verifies the bearer token of
// every request and stores the resulting identity in Fiber locals.
// Missing, malformed and rejected tokens all get the same 401 answer; a valid
// token lacking one of scopes gets 403.
func BearerAuth(verifier port.TokenVerifier, logger *slog.Logger, scopes ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			logger.Debug("request without bearer token", "path", c.Path())
			return unauthorized(c)
		}

		identity, err := verifier.Verify(c.Context(), token)
		if err != nil || identity == nil {
			logger.Debug("bearer token rejected", "path", c.Path(), "error", err)
			return unauthorized(c)
		}

		// set before the scope check so audit records name the caller
		c.Locals(identityLocal, identity)
		for _, scope := range scopes {
			if !identity.HasScope(scope) {
				logger.Debug("bearer token lacks scope", "path", c.Path(), "sub", identity.Subject, "scope", scope)
				return insufficientScope(c, scope)
			}
		}

		c.SetContext(ContextWithIdentity(c.Context(), identity))
		return c.Next()
	}
}

// GetIdentity extracts the verified identity from Fiber locals.
func GetIdentity(c fiber.Ctx) *domain.Identity {
	id, ok := c.Locals(identityLocal).(*domain.Identity)
	if !ok {
		return nil
	}
	return id
}

// ContextWithIdentity attaches id to ctx for code running outside Fiber handlers.
func ContextWithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity attached by ContextWithIdentity, or nil.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*domain.Identity)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func insufficientScope(c fiber.Ctx, scope string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer error="insufficient_scope", scope="`+scope+`"`)
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient_scope"})
}

func unauthorized(c fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}
