package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chris743/db-api/internal/auth/domain"
	"github.com/chris743/db-api/internal/auth/service"
	"github.com/chris743/db-api/pkg/constant"
)

const identityLocalKey = "identity"

// AuthMiddleware resolves request credentials into an Identity. Two schemes
// are accepted: a signed bearer token, and an opaque session key in the
// x-session-key header. Bearer tokens win; the session key is only consulted
// when no bearer identity could be established.
type AuthMiddleware struct {
	tokens   service.TokenGenerator
	sessions *service.SessionService
	log      *zap.Logger
}

func NewAuthMiddleware(tokens service.TokenGenerator, sessions *service.SessionService, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, log: log}
}

// Authenticate attaches an identity when one can be resolved and always
// passes the request on. Rejecting unauthenticated requests is RequireAuth's
// job, so public routes can share this middleware.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity := m.resolveBearer(c); identity != nil {
			c.Locals(identityLocalKey, identity)
			return c.Next()
		}

		if identity := m.resolveSessionKey(c); identity != nil {
			c.Locals(identityLocalKey, identity)
		}

		return c.Next()
	}
}

func (m *AuthMiddleware) resolveBearer(c *fiber.Ctx) *domain.Identity {
	header := c.Get(fiber.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil
	}

	claims, err := m.tokens.VerifyAccessToken(token)
	if err != nil {
		m.log.Warn("rejected bearer token", zap.String("ip", c.IP()))
		return nil
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil
	}

	return &domain.Identity{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
	}
}

func (m *AuthMiddleware) resolveSessionKey(c *fiber.Ctx) *domain.Identity {
	sessionKey := c.Get(constant.HeaderSessionKey)
	if sessionKey == "" {
		return nil
	}

	identity, err := m.sessions.ResolveSessionKey(c.UserContext(), sessionKey)
	if err != nil {
		m.log.Error("session key lookup failed", zap.Error(err))
		return nil
	}

	return identity
}

// RequireAuth rejects requests that carry no resolved identity.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFromCtx(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is not in roles.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFromCtx(c)
		if identity == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
}

// IdentityFromCtx returns the identity attached by Authenticate, or nil.
func IdentityFromCtx(c *fiber.Ctx) *domain.Identity {
	identity, _ := c.Locals(identityLocalKey).(*domain.Identity)
	return identity
}
