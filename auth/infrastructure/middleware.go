// Middleware adapted from clients_portal/auth/infrastructure/middleware.go's
// NewAuthMiddleware/RequireRole pair, generalised from the portal's
// {portal_user_id, portal_client_id, portal_role} locals to the single
// TenantScope Claims.Scope() derives, and extended with a blocklist
// check so a logged-out token is rejected even while still unexpired.
package infrastructure

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/doualaexpress/deligate/auth/domain"
	"github.com/doualaexpress/deligate/auth/security"
	"github.com/doualaexpress/deligate/pkg/apiresponse"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

const (
	localClaims = "auth_claims"
	localScope = "auth_scope"
	localToken = "auth_token"
)

// NewAuthMiddleware validates the bearer token, rejects revoked or expired
// sessions, and injects Claims/Scope for downstream handlers.
func NewAuthMiddleware(issuer *security.TokenIssuer, blocklist Blocklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthenticated(c, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthenticated(c, "invalid authorization format")
		}
		tokenString := parts[1]

		revoked, err := blocklist.IsRevoked(c.Context(), tokenString)
		if err != nil {
			return unauthenticated(c, "could not verify session")
		}
		if revoked {
			return unauthenticated(c, domain.ErrSessionRevoked.Error())
		}

		claims, err := issuer.Validate(tokenString)
		if err != nil {
			return unauthenticated(c, "invalid or expired token")
		}

		c.Locals(localClaims, claims)
		c.Locals(localScope, claims.Scope())
		c.Locals(localToken, tokenString)
		return c.Next()
	}
}

// RequireRole restricts a route to a specific role; super_admin always
// passes since it is the unrestricted role.
func RequireRole(role tenant.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(localClaims).(domain.Claims)
		if !ok {
			return unauthenticated(c, "missing session")
		}
		if claims.Role != role && claims.Role != tenant.RoleSuperAdmin {
			return c.Status(fiber.StatusForbidden).JSON(apiresponse.ErrorData{
				Success: false,
				Error: "FORBIDDEN",
				Message: "insufficient permissions",
			})
		}
		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(apiresponse.ErrorData{
		Success: false,
		Error: "UNAUTHENTICATED",
		Message: message,
	})
}

// ScopeFromCtx retrieves the TenantScope a prior NewAuthMiddleware pass
// attached to the request.
func ScopeFromCtx(c *fiber.Ctx) tenant.Scope {
	scope, _ := c.Locals(localScope).(tenant.Scope)
	return scope
}

// ClaimsFromCtx retrieves the session Claims attached by NewAuthMiddleware.
func ClaimsFromCtx(c *fiber.Ctx) domain.Claims {
	claims, _ := c.Locals(localClaims).(domain.Claims)
	return claims
}

// TokenFromCtx retrieves the raw bearer token, needed by the logout handler
// to revoke it.
func TokenFromCtx(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}
