package middleware

import (
	"strings"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "session"

// Session resolves an optional bearer token into an *auth.Session. Requests
// without a token continue anonymously, a present but invalid token is rejected.
func Session(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return util.HandleError(c, "invalid authorization header", common.ErrInvalidToken)
		}
		sess, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			return util.HandleError(c, "invalid token", err)
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

// RequireSession rejects anonymous requests with AuthRequired.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentSession(c).Authenticated() {
			return util.HandleError(c, "please sign in to continue", common.ErrAuthRequired)
		}
		return c.Next()
	}
}

// CurrentSession returns the request's session, nil when anonymous.
func CurrentSession(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(sessionLocal).(*auth.Session)
	return sess
}
