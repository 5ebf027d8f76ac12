package auth

import (
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// TokenMiddleware authenticates bearer requests with Fiber
type TokenMiddleware struct {
	verifier TokenVerifier
	resolver PrincipalResolver
}

func NewAuthMiddleware(verifier TokenVerifier, resolver PrincipalResolver) *TokenMiddleware {
	return &TokenMiddleware{
		verifier: verifier,
		resolver: resolver,
	}
}

// Authenticate verifies the bearer token and stores the caller's
// kernel.AuthContext in c.Locals("auth") and the request context.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return err
		}

		verified, err := am.verifier.Verify(c.UserContext(), token)
		if err != nil {
			return err
		}

		ac, err := am.resolver.Resolve(c.UserContext(), verified)
		if err != nil {
			return err
		}

		c.Locals(localsKey, ac)
		c.SetUserContext(kernel.WithAuthContext(c.UserContext(), ac))

		return c.Next()
	}
}

// RequireTiers rejects callers whose tier is not listed.
func (am *TokenMiddleware) RequireTiers(tiers ...kernel.Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, ok := GetAuthContext(c)
		if !ok {
			return iam.ErrUnauthenticated()
		}

		if !ac.HasTier(tiers...) {
			return iam.ErrAccessDenied()
		}

		return c.Next()
	}
}

// RequireAdmin is RequireTiers over the admin tiers.
func (am *TokenMiddleware) RequireAdmin() fiber.Handler {
	return am.RequireTiers(kernel.AdminTiers...)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(authHeader)
	if header == "" {
		return "", iam.ErrMissingAuthHeader()
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) || strings.TrimSpace(parts[1]) == "" {
		return "", iam.ErrInvalidToken()
	}
	return strings.TrimSpace(parts[1]), nil
}

// GetAuthContext returns the principal stored by Authenticate.
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	ac, ok := c.Locals(localsKey).(*kernel.AuthContext)
	return ac, ok && ac != nil
}
