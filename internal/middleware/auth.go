package middleware

import (
	"strings"

	"github.com/arturoeanton/devmind-gateway/internal/auth"
	"github.com/arturoeanton/devmind-gateway/internal/domain"
	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/gofiber/fiber/v3"
)

const userLocalsKey = "user"

// AuthGate creates a Fiber middleware that validates the bearer token on
// every protected request, resolves it to a user record, and injects the
// user into the request context. Requests failing any step are rejected
// with 401 before reaching business logic; the credential store is only
// ever read.
func AuthGate(tokens *auth.TokenService, store port.CredentialStore) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No token provided",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := tokens.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		user, err := store.GetUserByID(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// UserFromCtx extracts the authenticated user from Fiber locals.
// Returns nil outside an AuthGate-protected route.
func UserFromCtx(c fiber.Ctx) *domain.User {
	u, ok := c.Locals(userLocalsKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}
