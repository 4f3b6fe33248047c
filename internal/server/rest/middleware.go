package rest

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ak2k04/Life-Tracker/internal/server/auth"
)

// claimsKey is the fiber locals slot holding the verified token claims.
const claimsKey = "claims"

// requireAuth verifies the Bearer token and stashes the claims for the
// handler. Record routers mounted later reuse the same guard.
func (s *RestServer) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return respondError(c, fiber.StatusUnauthorized, "Authentication required")
	}

	token := strings.TrimPrefix(header, "Bearer ")
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// claimsFromCtx returns the claims stashed by requireAuth.
func claimsFromCtx(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*auth.Claims)
	return claims, ok
}
