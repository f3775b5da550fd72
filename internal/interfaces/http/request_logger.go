package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// RequestLogger registra cada petición con método, ruta, status, latencia y request id;
// tras la autenticación agrega tenant, usuario y rol.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev = ev.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start))
		if rid, ok := c.Locals("requestid").(string); ok {
			ev = ev.Str("request_id", rid)
		}
		if scope, scopeErr := (tenant.ContextResolver{}).Resolve(c.UserContext()); scopeErr == nil {
			ev = ev.Str("tenant_id", scope.TenantID).Str("user_id", scope.UserID)
		}
		if role := GetRole(c); role != "" {
			ev = ev.Str("role", role)
		}
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("http")
		return err
	}
}
