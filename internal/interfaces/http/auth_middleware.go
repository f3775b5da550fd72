package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
	"github.com/jhoicas/ferreteria-api/pkg/jwt"
)

// Locals keys.
const (
	LocalRole = "role"
)

// AuthMiddleware valida el Bearer Token JWT, arma el tenant.Scope con los claims tenant_id y
// user_id y lo deja en el contexto de usuario. Sin tenant o sin usuario responde 401.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if errors.Is(err, jwt.ErrExpired) {
			return unauthorized(c, "INVALID_TOKEN", "token expirado")
		}
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido")
		}
		scope := tenant.New(claims.TenantID, claims.UserID)
		if err := scope.Validate(); err != nil {
			return unauthorized(c, domain.KindUnauthorized, err.Error())
		}
		c.Locals(LocalRole, claims.Role)
		c.SetUserContext(tenant.WithScope(c.UserContext(), scope))
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

var resolver tenant.Resolver = tenant.ContextResolver{}

// ScopeFrom devuelve el Scope de la petición (después del middleware de auth).
func ScopeFrom(c *fiber.Ctx) (tenant.Scope, error) {
	return resolver.Resolve(c.UserContext())
}

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
