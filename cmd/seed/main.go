// seed carga datos iniciales de un tenant: unidades, una categoría, cliente y proveedor
// de mostrador y el catálogo de productos (con su stock inicial como Entrada del kardex).
//
// Uso: go run ./cmd/seed -tenant <id> [-file productos.csv|productos.xlsx] [-latin1] [-token-user <id>]
// Columnas: codigo, nombre, precio_venta, precio_compra, stock, stock_minimo. El CSV usa ';'.
// Con -token-user imprime un JWT de desarrollo para el tenant.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/ferreteria-api/pkg/config"
	"github.com/jhoicas/ferreteria-api/pkg/jwt"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

const seedUser = "seed"

func main() {
	tenantID := flag.String("tenant", "", "tenant a poblar (obligatorio)")
	file := flag.String("file", "", "CSV o XLSX de productos; vacío = catálogo de ejemplo")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	tokenUser := flag.String("token-user", "", "imprime un JWT para este usuario")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	scope := tenant.New(*tenantID, seedUser)
	if err := scope.Validate(); err != nil {
		log.Fatal().Err(err).Msg("indicar -tenant")
	}

	rows := sampleCatalog()
	if *file != "" {
		if rows, err = readFile(*file, *latin1); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("leer catálogo")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rt, err := bootstrap.Open(ctx, cfg, log.Component("bootstrap"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer rt.Close()
	svc := bootstrap.NewServices(rt.Stores, rt.Cache, sales.Config{CreditDays: cfg.Sales.CreditDays, InvoiceFormat: cfg.Sales.InvoiceFormat})

	now := time.Now()
	unitID := uuid.New().String()
	for _, u := range []entity.Unit{
		{ID: unitID, Code: "UND", Name: "Unidad", Abbreviation: "und"},
		{ID: uuid.New().String(), Code: "MT", Name: "Metro", Abbreviation: "m"},
		{ID: uuid.New().String(), Code: "KG", Name: "Kilogramo", Abbreviation: "kg"},
	} {
		u.TenantID, u.Active, u.CreatedAt = scope.TenantID, true, now
		if err := rt.Stores.Units.Create(ctx, &u); err != nil {
			log.Fatal().Err(err).Str("unit", u.Code).Msg("crear unidad")
		}
	}

	category := entity.Category{ID: uuid.New().String(), TenantID: scope.TenantID, Name: "General", Active: true, CreatedAt: now}
	if err := rt.Stores.Categories.Create(ctx, &category); err != nil {
		log.Fatal().Err(err).Msg("crear categoría")
	}

	customer := entity.Customer{
		ID: uuid.New().String(), TenantID: scope.TenantID, DocumentType: "CC", DocumentNumber: "222222222222",
		Name: "Cliente de mostrador", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := rt.Stores.Repos.Customers.Create(ctx, &customer); err != nil {
		log.Fatal().Err(err).Msg("crear cliente")
	}
	supplier := entity.Supplier{
		ID: uuid.New().String(), TenantID: scope.TenantID, DocumentType: "NIT", DocumentNumber: "900000000",
		BusinessName: "Proveedor general", PlazoPago: 30, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := rt.Stores.Repos.Suppliers.Create(ctx, &supplier); err != nil {
		log.Fatal().Err(err).Msg("crear proveedor")
	}

	created, skipped := 0, 0
	for _, r := range rows {
		_, err := svc.Catalog.CreateProduct(ctx, scope, catalog.CreateProductInput{
			Code:             r.Code,
			Name:             r.Name,
			CategoryID:       category.ID,
			BaseUnitID:       unitID,
			StockMinimo:      r.StockMinimo,
			PrecioBaseVenta:  r.PrecioVenta,
			PrecioBaseCompra: r.PrecioCompra,
			InitialStock:     r.Stock,
		})
		switch domain.KindOf(err) {
		case "":
			created++
		case domain.KindDuplicate:
			skipped++
		default:
			log.Error().Err(err).Str("code", r.Code).Msg("producto omitido")
			skipped++
		}
	}

	log.Info().
		Str("tenant_id", scope.TenantID).
		Str("customer_id", customer.ID).
		Str("supplier_id", supplier.ID).
		Int("products", created).
		Int("skipped", skipped).
		Msg("seed completado")

	if *tokenUser != "" {
		token, err := jwt.Generate(cfg.JWT.Secret, *tokenUser, scope.TenantID, "admin", cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Println(token)
	}
}

func readFile(path string, latin1 bool) ([]spreadsheet.CatalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return spreadsheet.ReadCatalogXLSX(f)
	}
	return spreadsheet.ReadCatalogCSV(f, latin1)
}

func sampleCatalog() []spreadsheet.CatalogRow {
	d := decimal.RequireFromString
	return []spreadsheet.CatalogRow{
		{Code: "TOR-001", Name: "Tornillo drywall 6x1", PrecioVenta: d("150"), PrecioCompra: d("80"), Stock: d("500"), StockMinimo: d("100")},
		{Code: "MAR-001", Name: "Martillo carpintero 16oz", PrecioVenta: d("28000"), PrecioCompra: d("17500"), Stock: d("12"), StockMinimo: d("3")},
		{Code: "CAB-012", Name: "Cable THHN 12 AWG", PrecioVenta: d("3200"), PrecioCompra: d("2100"), Stock: d("250.5"), StockMinimo: d("50")},
		{Code: "PIN-004", Name: "Pintura vinilo blanco galón", PrecioVenta: d("52000"), PrecioCompra: d("36000"), Stock: d("8"), StockMinimo: d("10")},
	}
}
