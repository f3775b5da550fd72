package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// InventoryHandler maneja ajustes, kardex, reposición y conciliación (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  Entrada, Salida y Merma mueven la cantidad indicada; Ajuste fija el stock en la cantidad indicada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, kind, quantity, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AdjustStockRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := h.uc.AdjustStock(c.UserContext(), scope, inventory.AdjustStockInput{
		ProductID: in.ProductID,
		Kind:      entity.MovementKind(in.Kind),
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// Movements godoc
// @Summary      Kardex de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta, inclusive (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := parseRange(c)
	if err != nil {
		return writeError(c, err)
	}
	pg := page(c)
	list, err := h.uc.ListMovements(c.UserContext(), scope, c.Params("id"), repository.MovementFilter{
		From: from, To: to, Limit: pg.Limit, Offset: pg.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Lista de reposición
// @Description  Productos en o bajo su stock mínimo con la cantidad sugerida de pedido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  inventory.LowStockItem
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.LowStock(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// Reconcile godoc
// @Summary      Conciliación stock vs kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  inventory.Discrepancy
// @Router       /api/inventory/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	diffs, err := h.uc.Reconcile(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"consistent": len(diffs) == 0, "discrepancies": diffs})
}
