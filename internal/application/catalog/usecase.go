// Package catalog administra productos y presentaciones. El stock nunca se edita
// directamente: el stock inicial entra como movimiento del kardex.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

const initialStockNote = "Stock inicial al crear producto"

// NormalizeCode recorta, compone (NFC) y pasa a mayúsculas el código de un producto,
// para que "tor-14" y "TOR-14" no convivan en el mismo tenant.
func NormalizeCode(code string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(code)))
}

// UseCase casos de uso del catálogo.
type UseCase struct {
	txRunner      inventory.TxRunner
	ledger        *inventory.StockLedger
	products      repository.ProductRepository
	presentations repository.PresentationRepository
	categories    repository.CategoryRepository
	units         repository.UnitRepository
	notifier      inventory.ChangeNotifier
}

// NewUseCase construye el caso de uso. notifier puede ser nil.
func NewUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.StockLedger,
	products repository.ProductRepository,
	presentations repository.PresentationRepository,
	categories repository.CategoryRepository,
	units repository.UnitRepository,
	notifier inventory.ChangeNotifier,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		ledger:        ledger,
		products:      products,
		presentations: presentations,
		categories:    categories,
		units:         units,
		notifier:      notifier,
	}
}

// CreateProductInput datos de un producto nuevo.
type CreateProductInput struct {
	Code             string
	Barcode          string
	Name             string
	Description      string
	CategoryID       string
	BaseUnitID       string
	StockMinimo      decimal.Decimal
	PrecioBaseVenta  decimal.Decimal
	PrecioBaseCompra decimal.Decimal
	InitialStock     decimal.Decimal
}

// CreateProduct crea el producto y, si trae stock inicial, registra la Entrada en la misma transacción.
func (uc *UseCase) CreateProduct(ctx context.Context, scope tenant.Scope, in CreateProductInput) (*entity.Product, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, domain.Invalid("codigo", "código requerido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("nombre", "nombre requerido")
	}
	if in.StockMinimo.IsNegative() || in.PrecioBaseVenta.IsNegative() || in.PrecioBaseCompra.IsNegative() || in.InitialStock.IsNegative() {
		return nil, domain.Invalid("", "stock mínimo, precios y stock inicial no pueden ser negativos")
	}
	if in.CategoryID != "" {
		c, err := uc.categories.GetByID(ctx, scope.TenantID, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.NotFound("categoría")
		}
	}
	if in.BaseUnitID != "" {
		u, err := uc.units.GetByID(ctx, scope.TenantID, in.BaseUnitID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.NotFound("unidad de medida")
		}
	}

	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		existing, err := r.Products.GetByCode(ctx, scope.TenantID, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		now := time.Now()
		product = &entity.Product{
			ID:               uuid.New().String(),
			Code:             code,
			Barcode:          strings.TrimSpace(in.Barcode),
			Name:             strings.TrimSpace(in.Name),
			Description:      in.Description,
			CategoryID:       in.CategoryID,
			BaseUnitID:       in.BaseUnitID,
			StockBase:        decimal.Zero,
			StockMinimo:      in.StockMinimo,
			PrecioBaseVenta:  in.PrecioBaseVenta,
			PrecioBaseCompra: in.PrecioBaseCompra,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := scope.Assign(&product.TenantID); err != nil {
			return err
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialStock.IsPositive() {
			mov, err := uc.ledger.ApplyMovement(ctx, r, scope, inventory.MovementInput{
				ProductID:     product.ID,
				Kind:          entity.MovementEntrada,
				Quantity:      in.InitialStock,
				Note:          initialStockNote,
				ReferenceType: entity.RefStockInicial,
				ReferenceID:   product.ID,
			})
			if err != nil {
				return err
			}
			product.StockBase = mov.StockAfter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return product, nil
}

// GetProduct obtiene un producto del tenant.
func (uc *UseCase) GetProduct(ctx context.Context, scope tenant.Scope, id string) (*entity.Product, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Deleted {
		return nil, domain.NotFound("producto")
	}
	return p, nil
}

// ListProducts lista productos activos del tenant.
func (uc *UseCase) ListProducts(ctx context.Context, scope tenant.Scope, f repository.ProductFilter) ([]*entity.Product, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	f.IncludeDeleted = false
	return uc.products.List(ctx, scope.TenantID, f)
}

// UpdateProductInput cambios sobre un producto; los campos nil no se modifican.
// El stock no es editable: solo cambia por movimientos del kardex.
type UpdateProductInput struct {
	Code             *string
	Barcode          *string
	Name             *string
	Description      *string
	CategoryID       *string
	BaseUnitID       *string
	StockMinimo      *decimal.Decimal
	PrecioBaseVenta  *decimal.Decimal
	PrecioBaseCompra *decimal.Decimal
	Active           *bool
}

// UpdateProduct edita los datos maestros del producto bajo bloqueo de su fila.
func (uc *UseCase) UpdateProduct(ctx context.Context, scope tenant.Scope, id string, in UpdateProductInput) (*entity.Product, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	for _, v := range []*decimal.Decimal{in.StockMinimo, in.PrecioBaseVenta, in.PrecioBaseCompra} {
		if v != nil && v.IsNegative() {
			return nil, domain.Invalid("", "stock mínimo y precios no pueden ser negativos")
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalid("nombre", "nombre requerido")
	}
	var code string
	if in.Code != nil {
		if code = NormalizeCode(*in.Code); code == "" {
			return nil, domain.Invalid("codigo", "código requerido")
		}
	}
	if in.CategoryID != nil && *in.CategoryID != "" {
		c, err := uc.categories.GetByID(ctx, scope.TenantID, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.NotFound("categoría")
		}
	}
	if in.BaseUnitID != nil && *in.BaseUnitID != "" {
		u, err := uc.units.GetByID(ctx, scope.TenantID, *in.BaseUnitID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.NotFound("unidad de medida")
		}
	}

	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		p, err := r.Products.GetForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if p == nil || p.Deleted {
			return domain.NotFound("producto")
		}
		if in.Code != nil && code != p.Code {
			other, err := r.Products.GetByCode(ctx, scope.TenantID, code)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.ErrDuplicate
			}
			p.Code = code
		}
		setString(&p.Barcode, in.Barcode, true)
		setString(&p.Name, in.Name, true)
		setString(&p.Description, in.Description, false)
		setString(&p.CategoryID, in.CategoryID, false)
		setString(&p.BaseUnitID, in.BaseUnitID, false)
		if in.StockMinimo != nil {
			p.StockMinimo = *in.StockMinimo
		}
		if in.PrecioBaseVenta != nil {
			p.PrecioBaseVenta = *in.PrecioBaseVenta
		}
		if in.PrecioBaseCompra != nil {
			p.PrecioBaseCompra = *in.PrecioBaseCompra
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		p.UpdatedAt = time.Now()
		if err := r.Products.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return product, nil
}

func setString(dst *string, v *string, trim bool) {
	if v == nil {
		return
	}
	if trim {
		*dst = strings.TrimSpace(*v)
		return
	}
	*dst = *v
}

// DeleteProduct borrado lógico. El kardex se conserva.
func (uc *UseCase) DeleteProduct(ctx context.Context, scope tenant.Scope, id string) error {
	if _, err := uc.GetProduct(ctx, scope, id); err != nil {
		return err
	}
	if err := uc.products.SoftDelete(ctx, scope.TenantID, id); err != nil {
		return err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return nil
}

// AddPresentationInput datos de una presentación.
type AddPresentationInput struct {
	Name             string
	UnitID           string
	FactorConversion decimal.Decimal
	PrecioVenta      decimal.Decimal
	PrecioCompra     decimal.Decimal
	Barcode          string
	IsPrimary        bool
}

// AddPresentation agrega una presentación al producto. El factor debe ser mayor a cero.
func (uc *UseCase) AddPresentation(ctx context.Context, scope tenant.Scope, productID string, in AddPresentationInput) (*entity.Presentation, error) {
	p, err := uc.GetProduct(ctx, scope, productID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("nombre", "nombre requerido")
	}
	if !in.FactorConversion.IsPositive() {
		return nil, domain.Invalid("factor_conversion", "el factor de conversión debe ser mayor a cero")
	}
	if in.PrecioVenta.IsNegative() || in.PrecioCompra.IsNegative() {
		return nil, domain.Invalid("", "los precios no pueden ser negativos")
	}
	pres := &entity.Presentation{
		ID:               uuid.New().String(),
		ProductID:        p.ID,
		Name:             strings.TrimSpace(in.Name),
		UnitID:           in.UnitID,
		FactorConversion: in.FactorConversion,
		PrecioVenta:      in.PrecioVenta,
		PrecioCompra:     in.PrecioCompra,
		Barcode:          strings.TrimSpace(in.Barcode),
		IsPrimary:        in.IsPrimary,
		Active:           true,
		CreatedAt:        time.Now(),
	}
	if err := scope.Assign(&pres.TenantID); err != nil {
		return nil, err
	}
	if err := uc.presentations.Create(ctx, pres); err != nil {
		return nil, err
	}
	return pres, nil
}

// ListPresentations presentaciones de un producto.
func (uc *UseCase) ListPresentations(ctx context.Context, scope tenant.Scope, productID string) ([]*entity.Presentation, error) {
	if _, err := uc.GetProduct(ctx, scope, productID); err != nil {
		return nil, err
	}
	return uc.presentations.ListByProduct(ctx, scope.TenantID, productID)
}

// UpdatePresentationInput cambios sobre una presentación; los campos nil no se modifican.
type UpdatePresentationInput struct {
	Name             *string
	UnitID           *string
	FactorConversion *decimal.Decimal
	PrecioVenta      *decimal.Decimal
	PrecioCompra     *decimal.Decimal
	Barcode          *string
	IsPrimary        *bool
	Active           *bool
}

// UpdatePresentation edita una presentación del producto. El factor sigue siendo mayor a cero.
func (uc *UseCase) UpdatePresentation(ctx context.Context, scope tenant.Scope, productID, presentationID string, in UpdatePresentationInput) (*entity.Presentation, error) {
	if _, err := uc.GetProduct(ctx, scope, productID); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalid("nombre", "nombre requerido")
	}
	if in.FactorConversion != nil && !in.FactorConversion.IsPositive() {
		return nil, domain.Invalid("factor_conversion", "el factor de conversión debe ser mayor a cero")
	}
	if (in.PrecioVenta != nil && in.PrecioVenta.IsNegative()) || (in.PrecioCompra != nil && in.PrecioCompra.IsNegative()) {
		return nil, domain.Invalid("", "los precios no pueden ser negativos")
	}
	pres, err := uc.presentations.GetByID(ctx, scope.TenantID, presentationID)
	if err != nil {
		return nil, err
	}
	if pres == nil || pres.ProductID != productID {
		return nil, domain.NotFound("presentación")
	}
	setString(&pres.Name, in.Name, true)
	setString(&pres.UnitID, in.UnitID, false)
	setString(&pres.Barcode, in.Barcode, true)
	if in.FactorConversion != nil {
		pres.FactorConversion = *in.FactorConversion
	}
	if in.PrecioVenta != nil {
		pres.PrecioVenta = *in.PrecioVenta
	}
	if in.PrecioCompra != nil {
		pres.PrecioCompra = *in.PrecioCompra
	}
	if in.IsPrimary != nil {
		pres.IsPrimary = *in.IsPrimary
	}
	if in.Active != nil {
		pres.Active = *in.Active
	}
	if err := uc.presentations.Update(ctx, pres); err != nil {
		return nil, err
	}
	return pres, nil
}
