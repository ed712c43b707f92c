package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"expedientes/internal/auth"
)

// OfficeLocalKey is the Fiber locals key holding the office of the verified session.
const OfficeLocalKey = "office"

// SessionVerifier validates a bearer token. *auth.Tokens implements it.
type SessionVerifier interface {
	Verify(token string) (auth.Session, error)
}

// RequireSession rejects requests without a valid "Authorization: Bearer <token>" header
// and stores the session office under OfficeLocalKey.
func RequireSession(v SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		sess, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session")
		}
		c.Locals(OfficeLocalKey, sess.Office)
		return c.Next()
	}
}

// SessionOffice returns the office stored by RequireSession.
func SessionOffice(c *fiber.Ctx) string {
	office, _ := c.Locals(OfficeLocalKey).(string)
	return office
}
