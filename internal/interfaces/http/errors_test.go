package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
)

func respond(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })
	resp, rerr := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, rerr)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_ConflictoDeConcurrencia409(t *testing.T) {
	err := &domain.PersistenceError{
		Message: "conflicto de concurrencia, intente de nuevo",
		Err:     errors.Join(domain.ErrConcurrency, errors.New("ERROR: could not serialize access (SQLSTATE 40001)")),
	}
	status, body := respond(t, err)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, domain.KindConcurrency, body.Code)
	assert.Equal(t, "conflicto de concurrencia, intente de nuevo", body.Message, "no expone el error del motor")
}

func TestWriteError_PersistenciaNoControlada500(t *testing.T) {
	status, body := respond(t, &domain.PersistenceError{Message: "list products", Err: errors.New("conexión cerrada")})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, domain.KindPersistence, body.Code)
	assert.Equal(t, "error de persistencia", body.Message)
}
