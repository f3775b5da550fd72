package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/reports"
	"github.com/jhoicas/ferreteria-api/internal/domain"
)

// ReportHandler tablero y reporte de ventas (solo lectura).
type ReportHandler struct {
	uc *reports.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Tablero principal
// @Description  Ventas del día, productos bajo mínimo, ganancia estimada del mes, últimos 7 días y top 10.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  reports.Dashboard
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetDashboard(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Sales godoc
// @Summary      Reporte de ventas por rango
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false "Hasta, inclusive (YYYY-MM-DD); por defecto hoy"
// @Success      200  {object}  reports.SalesReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	out, err := h.salesReport(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *ReportHandler) salesReport(c *fiber.Ctx) (*reports.SalesReport, error) {
	scope, err := ScopeFrom(c)
	if err != nil {
		return nil, err
	}
	from, to, err := parseRange(c)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, domain.Invalid("from", "fecha inicial requerida")
	}
	if to == nil {
		end := time.Now().Truncate(24*time.Hour).AddDate(0, 0, 1)
		to = &end
	}
	return h.uc.GetSalesReport(c.UserContext(), scope, *from, *to)
}
