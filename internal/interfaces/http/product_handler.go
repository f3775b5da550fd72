package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc *catalog.UseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Description  El código se normaliza a mayúsculas y es único por ferretería. initial_stock > 0 registra una Entrada en el kardex.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateProductRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.CreateProduct(c.UserContext(), scope, catalog.CreateProductInput{
		Code:             in.Code,
		Barcode:          in.Barcode,
		Name:             in.Name,
		Description:      in.Description,
		CategoryID:       in.CategoryID,
		BaseUnitID:       in.BaseUnitID,
		StockMinimo:      in.StockMinimo,
		PrecioBaseVenta:  in.PrecioBaseVenta,
		PrecioBaseCompra: in.PrecioBaseCompra,
		InitialStock:     in.InitialStock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProduct(p))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.GetProduct(c.UserContext(), scope, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromProduct(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q            query  string  false  "Búsqueda por nombre, código o código de barras"
// @Param        category_id  query  string  false  "Categoría"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	pg := page(c)
	products, err := h.uc.ListProducts(c.UserContext(), scope, repository.ProductFilter{
		Search:     c.Query("q"),
		CategoryID: c.Query("category_id"),
		Limit:      pg.Limit,
		Offset:     pg.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.FromProduct(p))
	}
	return c.JSON(dto.ProductListResponse{Items: items, Page: dto.NewPageResponse(pg, len(items))})
}

// Update godoc
// @Summary      Editar producto
// @Description  Cambios parciales: solo se modifican los campos enviados. El stock solo cambia por el kardex.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Cambios"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateProductRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.UpdateProduct(c.UserContext(), scope, c.Params("id"), catalog.UpdateProductInput{
		Code:             in.Code,
		Barcode:          in.Barcode,
		Name:             in.Name,
		Description:      in.Description,
		CategoryID:       in.CategoryID,
		BaseUnitID:       in.BaseUnitID,
		StockMinimo:      in.StockMinimo,
		PrecioBaseVenta:  in.PrecioBaseVenta,
		PrecioBaseCompra: in.PrecioBaseCompra,
		Active:           in.Active,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromProduct(p))
}

// Delete godoc
// @Summary      Eliminar producto (borrado lógico)
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeleteProduct(c.UserContext(), scope, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPresentation godoc
// @Summary      Agregar presentación
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del producto"
// @Param        body  body  dto.AddPresentationRequest  true  "Presentación"
// @Success      201   {object}  dto.PresentationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/presentations [post]
func (h *ProductHandler) AddPresentation(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AddPresentationRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.AddPresentation(c.UserContext(), scope, c.Params("id"), catalog.AddPresentationInput{
		Name:             in.Name,
		UnitID:           in.UnitID,
		FactorConversion: in.FactorConversion,
		PrecioVenta:      in.PrecioVenta,
		PrecioCompra:     in.PrecioCompra,
		Barcode:          in.Barcode,
		IsPrimary:        in.IsPrimary,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPresentation(p))
}

// ListPresentations godoc
// @Summary      Listar presentaciones de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.PresentationResponse
// @Router       /api/products/{id}/presentations [get]
func (h *ProductHandler) ListPresentations(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListPresentations(c.UserContext(), scope, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PresentationResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromPresentation(p))
	}
	return c.JSON(out)
}

// UpdatePresentation godoc
// @Summary      Editar presentación
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id              path  string                         true  "ID del producto"
// @Param        presentationId  path  string                         true  "ID de la presentación"
// @Param        body            body  dto.UpdatePresentationRequest  true  "Cambios"
// @Success      200   {object}  dto.PresentationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/presentations/{presentationId} [put]
func (h *ProductHandler) UpdatePresentation(c *fiber.Ctx) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdatePresentationRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.UpdatePresentation(c.UserContext(), scope, c.Params("id"), c.Params("presentationId"), catalog.UpdatePresentationInput{
		Name:             in.Name,
		UnitID:           in.UnitID,
		FactorConversion: in.FactorConversion,
		PrecioVenta:      in.PrecioVenta,
		PrecioCompra:     in.PrecioCompra,
		Barcode:          in.Barcode,
		IsPrimary:        in.IsPrimary,
		Active:           in.Active,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPresentation(p))
}
