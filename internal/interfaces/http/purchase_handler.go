package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/payments"
	"github.com/jhoicas/ferreteria-api/internal/application/purchases"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

type payFunc func(ctx context.Context, scope tenant.Scope, purchaseID string, in payments.Input) (*entity.Purchase, error)

// PurchaseHandler maneja compras, recepción y pagos a proveedores (protegido).
type PurchaseHandler struct {
	uc *purchases.UseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchases.UseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar compra
// @Description  La compra queda Pendiente; el stock entra al recibirla.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreatePurchaseRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]purchases.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchases.LineInput{
			ProductID:      l.ProductID,
			PresentationID: l.PresentationID,
			Quantity:       l.Quantity,
			UnitCost:       l.UnitCost,
			Discount:       l.Discount,
		})
	}
	p, err := h.uc.CreatePurchase(c.UserContext(), scope, purchases.CreatePurchaseInput{
		SupplierID:            in.SupplierID,
		SupplierInvoiceNumber: in.SupplierInvoiceNumber,
		Date:                  in.Date,
		DueDate:               in.DueDate,
		Total:                 in.Total,
		Lines:                 lines,
		Notes:                 in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchase(p))
}

// GetByID godoc
// @Summary      Obtener compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.GetPurchase(c.UserContext(), scope, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchase(p))
}

// List godoc
// @Summary      Listar compras
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta, inclusive (YYYY-MM-DD)"
// @Param        status  query  string  false  "Pendiente | Recibida"
// @Success      200  {array}  dto.PurchaseResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := parseRange(c)
	if err != nil {
		return writeError(c, err)
	}
	pg := page(c)
	list, err := h.uc.ListPurchases(c.UserContext(), scope, repository.DocumentFilter{
		From: from, To: to, Status: c.Query("status"), Limit: pg.Limit, Offset: pg.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromPurchase(p))
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir compra
// @Description  Ingresa el stock de cada línea y recalcula el costo promedio.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      409  {object}  dto.ErrorResponse  "ya recibida"
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.ReceivePurchase(c.UserContext(), scope, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchase(p))
}

// RegisterPayment godoc
// @Summary      Pagar compra
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la compra"
// @Param        body  body  dto.PaymentRequest  true  "Pago"
// @Success      200   {object}  dto.PurchaseResponse
// @Router       /api/purchases/{id}/payments [post]
func (h *PurchaseHandler) RegisterPayment(c *fiber.Ctx) error {
	return h.pay(c, h.uc.RegisterPayment)
}

// PayAndReceive godoc
// @Summary      Pagar y recibir compra
// @Description  Pago y recepción en una sola transacción: si alguno falla, no se aplica ninguno.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la compra"
// @Param        body  body  dto.PaymentRequest  true  "Pago"
// @Success      200   {object}  dto.PurchaseResponse
// @Router       /api/purchases/{id}/pay-and-receive [post]
func (h *PurchaseHandler) PayAndReceive(c *fiber.Ctx) error {
	return h.pay(c, h.uc.PayAndReceive)
}

func (h *PurchaseHandler) pay(c *fiber.Ctx, fn payFunc) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.PaymentRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	p, err := fn(c.UserContext(), scope, c.Params("id"), paymentInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchase(p))
}

// Delete godoc
// @Summary      Eliminar compra pendiente
// @Tags         purchases
// @Security     Bearer
// @Param        id   path  string  true  "ID de la compra"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "ya recibida"
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeletePurchase(c.UserContext(), scope, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
