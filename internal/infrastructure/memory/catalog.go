package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository      = (*ProductRepo)(nil)
	_ repository.PresentationRepository = (*PresentationRepo)(nil)
	_ repository.CategoryRepository     = (*CategoryRepo)(nil)
	_ repository.UnitRepository         = (*UnitRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ base }

// Create guarda el producto; el código es único por tenant.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	if p.TenantID == "" {
		return domain.ErrTenantRequired
	}
	return r.read(func(st *state) error {
		for _, existing := range st.products {
			if existing.TenantID == p.TenantID && existing.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) get(tenantID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.read(func(st *state) error {
		if p, ok := st.products[id]; ok && p.TenantID == tenantID {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetByID obtiene el producto del tenant o nil.
func (r *ProductRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	return r.get(tenantID, id)
}

// GetForUpdate igual que GetByID; el bloqueo lo da la transacción serializada.
func (r *ProductRepo) GetForUpdate(_ context.Context, tenantID, id string) (*entity.Product, error) {
	return r.get(tenantID, id)
}

// GetByCode busca por código normalizado.
func (r *ProductRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID && p.Code == code {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// List lista productos ordenados por código, igual que PostgreSQL.
func (r *ProductRepo) List(_ context.Context, tenantID string, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	search := strings.ToLower(strings.TrimSpace(f.Search))
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID != tenantID || (p.Deleted && !f.IncludeDeleted) {
				continue
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.Code), search) {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, f.Offset, f.Limit), err
}

// ListLowStock productos activos con StockBase <= StockMinimo.
func (r *ProductRepo) ListLowStock(_ context.Context, tenantID string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID && !p.Deleted && p.Active && p.IsLowStock() {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (r *ProductRepo) update(tenantID, id string, fn func(p *entity.Product)) error {
	return r.read(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.TenantID != tenantID {
			return domain.NotFound("producto")
		}
		fn(&p)
		st.products[id] = p
		return nil
	})
}

// UpdateStock fija StockBase.
func (r *ProductRepo) UpdateStock(_ context.Context, tenantID, id string, stock decimal.Decimal) error {
	return r.update(tenantID, id, func(p *entity.Product) { p.StockBase = stock })
}

// UpdatePurchaseCost fija PrecioBaseCompra.
func (r *ProductRepo) UpdatePurchaseCost(_ context.Context, tenantID, id string, cost decimal.Decimal) error {
	return r.update(tenantID, id, func(p *entity.Product) { p.PrecioBaseCompra = cost })
}

// Update guarda los datos maestros; el código sigue siendo único por tenant.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.read(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok || cur.TenantID != p.TenantID {
			return domain.NotFound("producto")
		}
		for _, other := range st.products {
			if other.ID != p.ID && other.TenantID == p.TenantID && other.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		cur.Code = p.Code
		cur.Barcode = p.Barcode
		cur.Name = p.Name
		cur.Description = p.Description
		cur.CategoryID = p.CategoryID
		cur.BaseUnitID = p.BaseUnitID
		cur.StockMinimo = p.StockMinimo
		cur.PrecioBaseVenta = p.PrecioBaseVenta
		cur.PrecioBaseCompra = p.PrecioBaseCompra
		cur.Active = p.Active
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

// SoftDelete marca el producto como eliminado.
func (r *ProductRepo) SoftDelete(_ context.Context, tenantID, id string) error {
	return r.update(tenantID, id, func(p *entity.Product) {
		p.Deleted = true
		p.Active = false
	})
}

// PresentationRepo presentaciones en memoria.
type PresentationRepo struct{ base }

// Create guarda la presentación; el producto debe existir en el tenant.
func (r *PresentationRepo) Create(_ context.Context, p *entity.Presentation) error {
	return r.read(func(st *state) error {
		prod, ok := st.products[p.ProductID]
		if !ok || prod.TenantID != p.TenantID {
			return &domain.PersistenceError{Message: "el producto de la presentación no existe"}
		}
		st.presentations[p.ID] = *p
		return nil
	})
}

// GetByID obtiene la presentación del tenant o nil.
func (r *PresentationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Presentation, error) {
	var out *entity.Presentation
	err := r.read(func(st *state) error {
		if p, ok := st.presentations[id]; ok && p.TenantID == tenantID {
			out = &p
		}
		return nil
	})
	return out, err
}

// ListByProduct presentaciones del producto, la principal primero.
func (r *PresentationRepo) ListByProduct(_ context.Context, tenantID, productID string) ([]*entity.Presentation, error) {
	var out []*entity.Presentation
	err := r.read(func(st *state) error {
		for _, p := range st.presentations {
			if p.TenantID == tenantID && p.ProductID == productID {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

// Update reemplaza la presentación del tenant.
func (r *PresentationRepo) Update(_ context.Context, p *entity.Presentation) error {
	return r.read(func(st *state) error {
		cur, ok := st.presentations[p.ID]
		if !ok || cur.TenantID != p.TenantID {
			return domain.NotFound("presentación")
		}
		st.presentations[p.ID] = *p
		return nil
	})
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ base }

// Create guarda la categoría.
func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.read(func(st *state) error {
		st.categories[c.ID] = *c
		return nil
	})
}

// GetByID obtiene la categoría del tenant o nil.
func (r *CategoryRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.read(func(st *state) error {
		if c, ok := st.categories[id]; ok && c.TenantID == tenantID {
			out = &c
		}
		return nil
	})
	return out, err
}

// UnitRepo unidades en memoria.
type UnitRepo struct{ base }

// Create guarda la unidad.
func (r *UnitRepo) Create(_ context.Context, u *entity.Unit) error {
	return r.read(func(st *state) error {
		st.units[u.ID] = *u
		return nil
	})
}

// GetByID obtiene la unidad del tenant o nil.
func (r *UnitRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Unit, error) {
	var out *entity.Unit
	err := r.read(func(st *state) error {
		if u, ok := st.units[id]; ok && u.TenantID == tenantID {
			out = &u
		}
		return nil
	})
	return out, err
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
