package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/payments"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// SaleHandler maneja ventas, abonos y anulaciones (protegido).
type SaleHandler struct {
	uc *sales.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

func paymentInput(in dto.PaymentRequest) payments.Input {
	return payments.Input{Amount: in.Amount, Method: entity.PaymentMethod(in.Method), Reference: in.Reference}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida stock y crédito, descuenta inventario y asigna número de factura en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente"
// @Failure      422   {object}  dto.ErrorResponse  "límite de crédito excedido"
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]sales.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, sales.LineInput{
			ProductID:      l.ProductID,
			PresentationID: l.PresentationID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			Discount:       l.Discount,
		})
	}
	var initial *payments.Input
	if in.InitialPayment != nil {
		p := paymentInput(*in.InitialPayment)
		initial = &p
	}
	sale, err := h.uc.CreateSale(c.UserContext(), scope, sales.CreateSaleInput{
		CustomerID:     in.CustomerID,
		PaymentType:    entity.PaymentType(in.PaymentType),
		Lines:          lines,
		InitialPayment: initial,
		Notes:          in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSale(sale))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	sale, err := h.uc.GetSale(c.UserContext(), scope, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}

// List godoc
// @Summary      Historial de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta, inclusive (YYYY-MM-DD)"
// @Param        status  query  string  false  "Pendiente | Completada | Anulada"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.SaleResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := parseRange(c)
	if err != nil {
		return writeError(c, err)
	}
	pg := page(c)
	list, err := h.uc.ListSales(c.UserContext(), scope, repository.DocumentFilter{
		From: from, To: to, Status: c.Query("status"), Limit: pg.Limit, Offset: pg.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.FromSale(s))
	}
	return c.JSON(out)
}

// RegisterPayment godoc
// @Summary      Abonar a una venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la venta"
// @Param        body  body  dto.PaymentRequest  true  "Abono"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payments [post]
func (h *SaleHandler) RegisterPayment(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.PaymentRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sale, err := h.uc.RegisterPayment(c.UserContext(), scope, c.Params("id"), paymentInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}

// Void godoc
// @Summary      Anular venta
// @Description  Devuelve el stock de cada línea y revierte el saldo pendiente del cliente.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la venta"
// @Param        body  body  dto.VoidSaleRequest  true  "Motivo"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse  "ya anulada"
// @Router       /api/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.VoidSaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sale, err := h.uc.VoidSale(c.UserContext(), scope, c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}
