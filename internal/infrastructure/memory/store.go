// Package memory implementa los repositorios y el TxRunner en memoria. Las transacciones
// se serializan con un mutex y un error en fn restaura la copia tomada al iniciar, de modo
// que el comportamiento de commit/rollback coincide con el de PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products         map[string]entity.Product
	presentations    map[string]entity.Presentation
	categories       map[string]entity.Category
	units            map[string]entity.Unit
	movements        []entity.StockMovement
	customers        map[string]entity.Customer
	suppliers        map[string]entity.Supplier
	sales            map[string]entity.Sale
	saleLines        []entity.SaleLine
	salePayments     []entity.Payment
	purchases        map[string]entity.Purchase
	purchaseLines    []entity.PurchaseLine
	purchasePayments []entity.Payment
	sequences        map[string]int64
}

func newState() *state {
	return &state{
		products:      map[string]entity.Product{},
		presentations: map[string]entity.Presentation{},
		categories:    map[string]entity.Category{},
		units:         map[string]entity.Unit{},
		customers:     map[string]entity.Customer{},
		suppliers:     map[string]entity.Supplier{},
		sales:         map[string]entity.Sale{},
		purchases:     map[string]entity.Purchase{},
		sequences:     map[string]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		products:         cloneMap(s.products),
		presentations:    cloneMap(s.presentations),
		categories:       cloneMap(s.categories),
		units:            cloneMap(s.units),
		movements:        append([]entity.StockMovement(nil), s.movements...),
		customers:        cloneMap(s.customers),
		suppliers:        cloneMap(s.suppliers),
		sales:            cloneMap(s.sales),
		saleLines:        append([]entity.SaleLine(nil), s.saleLines...),
		salePayments:     append([]entity.Payment(nil), s.salePayments...),
		purchases:        cloneMap(s.purchases),
		purchaseLines:    append([]entity.PurchaseLine(nil), s.purchaseLines...),
		purchasePayments: append([]entity.Payment(nil), s.purchasePayments...),
		sequences:        cloneMap(s.sequences),
	}
}

// Store almacenamiento en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// New construye un Store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// base comparte el Store; dentro de una transacción el mutex ya está tomado por Run.
type base struct {
	s    *Store
	inTx bool
}

func (b base) read(fn func(st *state) error) error {
	if !b.inTx {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	return fn(b.s.st)
}

// Run ejecuta fn con repositorios transaccionales. Si fn falla el estado vuelve al de antes.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Repos repositorios fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Repos() inventory.TxRepos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) inventory.TxRepos {
	b := base{s: s, inTx: inTx}
	return inventory.TxRepos{
		Products:      &ProductRepo{b},
		Presentations: &PresentationRepo{b},
		Movements:     &MovementRepo{b},
		Customers:     &CustomerRepo{b},
		Suppliers:     &SupplierRepo{b},
		Sales:         &SaleRepo{b},
		Purchases:     &PurchaseRepo{b},
		Sequences:     &SequenceRepo{b},
	}
}

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{base{s: s}} }

// Units repositorio de unidades.
func (s *Store) Units() *UnitRepo { return &UnitRepo{base{s: s}} }

// Reports repositorio de reportes.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{base{s: s}} }
