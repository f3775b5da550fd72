package http

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
)

var statusByKind = map[string]int{
	domain.KindValidation:     fiber.StatusBadRequest,
	domain.KindNotFound:       fiber.StatusNotFound,
	domain.KindDuplicate:      fiber.StatusConflict,
	domain.KindInsufficient:   fiber.StatusConflict,
	domain.KindCreditExceeded: fiber.StatusUnprocessableEntity,
	domain.KindInvalidState:   fiber.StatusConflict,
	domain.KindPersistence:    fiber.StatusUnprocessableEntity,
	domain.KindConcurrency:    fiber.StatusConflict,
	domain.KindUnauthorized:   fiber.StatusUnauthorized,
}

// requestError error de decodificación o validación del cuerpo, con su respuesta ya armada.
type requestError struct {
	body dto.ErrorResponse
}

func (e *requestError) Error() string { return e.body.Message }

// writeError traduce un error de dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return c.Status(fiber.StatusBadRequest).JSON(re.body)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(fe.Code), Message: fe.Message})
	}
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	msg := err.Error()

	var pe *domain.PersistenceError
	switch {
	case kind == domain.KindConcurrency && errors.As(err, &pe):
		msg = pe.Message
	case kind == domain.KindPersistence && errors.As(err, &pe) && pe.Err == nil:
		// violación de constraint ya traducida: el mensaje es apto para el cliente
		msg = pe.Message
	case kind == domain.KindPersistence, !ok:
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error no controlado")
		status = fiber.StatusInternalServerError
		if kind == domain.KindPersistence {
			msg = "error de persistencia"
		} else {
			kind = domain.KindInternal
			msg = "error interno"
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: kind, Message: msg})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON y valida las etiquetas validate del DTO.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &requestError{body: dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &requestError{body: dto.ErrorResponse{Code: domain.KindValidation, Message: err.Error()}}
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return &requestError{body: dto.ErrorResponse{Code: domain.KindValidation, Message: "datos inválidos", Fields: fields}}
	}
	return nil
}

// parseDate acepta YYYY-MM-DD o RFC3339. Vacío devuelve nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.Invalid("fecha", "formato de fecha inválido: %s", s)
	}
	return &t, nil
}

// parseRange lee from/to de la query. Un to con solo fecha incluye ese día completo.
func parseRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = parseDate(c.Query("from")); err != nil {
		return nil, nil, err
	}
	if to, err = parseDate(c.Query("to")); err != nil {
		return nil, nil, err
	}
	if to != nil && len(c.Query("to")) == len("2006-01-02") {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}

func page(c *fiber.Ctx) dto.PageRequest {
	return dto.NewPageRequest(c.QueryInt("limit"), c.QueryInt("offset"))
}
