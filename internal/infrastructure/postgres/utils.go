package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ferreteria-api/internal/domain"
)

// Mensajes de dominio por constraint, para no exponer nombres de tablas al cliente.
var constraintMessages = map[string]string{
	"uq_products_tenant_code":    "ya existe un producto con ese código",
	"uq_sales_tenant_invoice":    "el número de factura ya existe",
	"uq_customers_document":      "ya existe un cliente con ese documento",
	"uq_suppliers_document":      "ya existe un proveedor con ese documento",
	"fk_products_category":       "la categoría seleccionada no es válida",
	"fk_products_unit":           "la unidad de medida seleccionada no es válida",
	"fk_presentations_product":   "el producto de la presentación no existe",
	"fk_movements_product":       "el producto del movimiento no existe",
	"fk_sales_customer":          "el cliente seleccionado no es válido o ha sido eliminado",
	"fk_sale_lines_sale":         "la venta de la línea no existe",
	"fk_sale_lines_product":      "el producto seleccionado no es válido o ha sido eliminado",
	"fk_sale_payments_sale":      "la venta del pago no existe",
	"fk_purchases_supplier":      "el proveedor seleccionado no es válido o ha sido eliminado",
	"fk_purchase_lines_purchase": "la compra de la línea no existe",
	"fk_purchase_lines_product":  "el producto seleccionado no es válido o ha sido eliminado",
	"fk_purchase_payments":       "la compra del pago no existe",
	"ck_products_stock":          "el stock no puede quedar negativo",
}

// translate convierte errores de PostgreSQL en errores de dominio: constraints únicos y
// de llave foránea pasan a PersistenceError con un mensaje legible; fallos de serialización y
// deadlocks quedan marcados con ErrConcurrency; el resto se envuelve con op.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &domain.PersistenceError{Message: op, Err: err}
	}
	msg := constraintMessages[pgErr.ConstraintName]
	switch pgErr.Code {
	case "23505":
		if msg == "" {
			msg = "registro duplicado"
		}
		return &domain.PersistenceError{Message: msg, Err: domain.ErrDuplicate}
	case "23503":
		if msg == "" {
			msg = "referencia a un registro inexistente"
		}
		return &domain.PersistenceError{Message: msg}
	case "23514":
		if msg == "" {
			msg = "valor fuera del rango permitido"
		}
		return &domain.PersistenceError{Message: msg}
	case "40001", "40P01":
		return &domain.PersistenceError{Message: "conflicto de concurrencia, intente de nuevo", Err: errors.Join(domain.ErrConcurrency, err)}
	}
	return &domain.PersistenceError{Message: fmt.Sprintf("%s (%s)", op, pgErr.Code), Err: err}
}

// nullable convierte "" en NULL para columnas de llave foránea opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func limitOffset(limit, offset int) string {
	out := ""
	if limit > 0 {
		out += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		out += fmt.Sprintf(" OFFSET %d", offset)
	}
	return out
}

func notFound(resource string) error {
	return domain.NotFound(resource)
}
