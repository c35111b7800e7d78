package landmark

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouteGuard is the authentication middleware factory. It extracts the
// session token from the Authorization header, falling back to the auth
// cookie, resolves the acting user, and stores it in the request locals for
// controllers to pick up.
type RouteGuard struct {
	auther Authenticator
	cfg    Config
	logger Logger
}

func NewRouteGuard(auther Authenticator, cfg Config) *RouteGuard {
	return &RouteGuard{
		auther: auther,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (g *RouteGuard) WithLogger(logger Logger) *RouteGuard {
	g.logger = logger
	return g
}

// Protected requires a valid session. Missing, malformed, expired, and stale
// tokens are all rejected with a structured 401.
func (g *RouteGuard) Protected() fiber.Handler {
	return g.handler(false)
}

// Optional resolves the session when one is present but lets the request
// through unauthenticated otherwise. Used by public reads that personalize
// when a user is known.
func (g *RouteGuard) Optional() fiber.Handler {
	return g.handler(true)
}

func (g *RouteGuard) handler(optional bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := g.extractToken(c)
		if raw == "" {
			if optional {
				return c.Next()
			}
			return ErrMissingToken
		}

		claims, err := g.auther.SessionFromToken(raw)
		if err != nil {
			if optional {
				g.logger.Debug("optional auth failed, proceeding: %v", err)
				return c.Next()
			}
			if IsMalformedError(err) {
				return ErrTokenMalformed
			}
			return err
		}

		user, err := g.auther.UserFromClaims(c.UserContext(), claims)
		if err != nil {
			if optional {
				g.logger.Debug("optional auth user resolution failed, proceeding: %v", err)
				return c.Next()
			}
			return err
		}

		c.Locals(g.cfg.GetContextKey(), user)
		return c.Next()
	}
}

// RequireVerified rejects sessions whose email has not been verified yet.
// Must run after Protected.
func (g *RouteGuard) RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c, g.cfg.GetContextKey())
		if err != nil {
			return err
		}
		if !user.EmailVerified {
			return ErrEmailNotVerified
		}
		return c.Next()
	}
}

// RestrictTo limits a route to the given roles. Must run after Protected.
func (g *RouteGuard) RestrictTo(roles ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c, g.cfg.GetContextKey())
		if err != nil {
			return err
		}
		if !RoleAllowed(user.Role, roles...) {
			return ErrForbiddenRole
		}
		return c.Next()
	}
}

func (g *RouteGuard) extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Cookies(g.cfg.GetCookieName())
}

// SetSessionCookie stores the session token in the http-only auth cookie.
func (g *RouteGuard) SetSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cfg.GetCookieName(),
		Value:    token,
		Expires:  time.Now().Add(time.Duration(g.cfg.GetTokenExpiration()) * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// ClearSessionCookie expires the auth cookie.
func (g *RouteGuard) ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cfg.GetCookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// CurrentUser retrieves the authenticated user stored by the guard.
func CurrentUser(c *fiber.Ctx, key string) (*User, error) {
	user, ok := c.Locals(key).(*User)
	if !ok || user == nil {
		return nil, ErrMissingToken
	}
	return user, nil
}
