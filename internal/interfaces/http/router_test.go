package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/ferreteria-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/ferreteria-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantA   = "ferreteria-a"
	testTenantB   = "ferreteria-b"
	testIssuer    = "ferreteria-api-test"
)

func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return buildTestAppWithLogger(t, zerolog.Nop())
}

func buildTestAppWithLogger(t *testing.T, logger zerolog.Logger) *fiber.App {
	t.Helper()
	svc := bootstrap.NewServices(bootstrap.MemoryStores(memory.New()), nil, sales.DefaultConfig())
	return apphttp.NewApp(apphttp.AppOptions{Name: "test", Logger: logger}, apphttp.RouterDeps{
		CatalogUC:   svc.Catalog,
		InventoryUC: svc.Inventory,
		SalesUC:     svc.Sales,
		PurchasesUC: svc.Purchases,
		ReportsUC:   svc.Reports,
		JWTSecret:   testJWTSecret,
	})
}

func bearer(t *testing.T, tenantID, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, tenantID, "vendedor", testIssuer, 60)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// do lanza la petición y decodifica el cuerpo JSON (si hay) en un mapa.
func do(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func createProduct(t *testing.T, app *fiber.App, auth, code string, stock int) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/api/products", auth, map[string]any{
		"code":              code,
		"name":              "Producto " + code,
		"precio_base_venta": 2500,
		"initial_stock":     stock,
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["id"].(string)
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SinToken401(t *testing.T) {
	app := buildTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAuth_TokenSinTenant401(t *testing.T) {
	app := buildTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/products", bearer(t, "", testUserID), nil)
	assert.Equal(t, http.StatusUnauthorized, status, "un token sin tenant_id no debe resolver a un tenant por defecto")
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestAuth_TokenSinUsuario401(t *testing.T) {
	app := buildTestApp(t)
	status, _ := do(t, app, http.MethodGet, "/api/products", bearer(t, testTenantA, ""), nil)
	assert.Equal(t, http.StatusUnauthorized, status, "no existe usuario por defecto")
}

func TestRequestLogger_IncluyeTenantYRol(t *testing.T) {
	var buf bytes.Buffer
	app := buildTestAppWithLogger(t, zerolog.New(&buf))

	status, _ := do(t, app, http.MethodGet, "/api/products", bearer(t, testTenantA, testUserID), nil)
	require.Equal(t, http.StatusOK, status)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, testTenantA, entry["tenant_id"])
	assert.Equal(t, testUserID, entry["user_id"])
	assert.Equal(t, "vendedor", entry["role"], "el rol del token queda en el log de acceso")
}

func TestHealth_Publico(t *testing.T) {
	app := buildTestApp(t)
	status, body := do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y aislamiento entre tenants
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CodigoDuplicado409(t *testing.T) {
	app := buildTestApp(t)
	auth := bearer(t, testTenantA, testUserID)
	createProduct(t, app, auth, "TOR-001", 0)

	status, body := do(t, app, http.MethodPost, "/api/products", auth, map[string]any{"code": "tor-001", "name": "Otro"})
	assert.Equal(t, http.StatusConflict, status, "el código se normaliza antes de verificar unicidad")
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestProducts_ValidacionDeCampos400(t *testing.T) {
	app := buildTestApp(t)
	status, body := do(t, app, http.MethodPost, "/api/products", bearer(t, testTenantA, testUserID), map[string]any{"code": "X"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok, "la respuesta debe detallar los campos inválidos")
	assert.Contains(t, fields, "CreateProductRequest.name")
}

func TestProducts_OtroTenantNoLosVe(t *testing.T) {
	app := buildTestApp(t)
	id := createProduct(t, app, bearer(t, testTenantA, testUserID), "CLA-001", 5)

	status, _ := do(t, app, http.MethodGet, "/api/products/"+id, bearer(t, testTenantB, testUserID), nil)
	assert.Equal(t, http.StatusNotFound, status, "un producto de otro tenant debe verse como inexistente")

	status, _ = do(t, app, http.MethodGet, "/api/products/"+id, bearer(t, testTenantA, testUserID), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProducts_EdicionParcial(t *testing.T) {
	app := buildTestApp(t)
	auth := bearer(t, testTenantA, testUserID)
	id := createProduct(t, app, auth, "LLA-001", 6)
	createProduct(t, app, auth, "LLA-002", 0)

	status, body := do(t, app, http.MethodPut, "/api/products/"+id, auth, map[string]any{
		"name": "Llave inglesa 10\"", "precio_base_venta": 32000, "stock_minimo": 2,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Llave inglesa 10\"", body["name"])
	assert.Equal(t, "32000", body["precio_base_venta"])
	assert.Equal(t, "LLA-001", body["code"], "los campos no enviados se conservan")
	assert.Equal(t, "6", body["stock_base"], "el stock no se edita")

	status, body = do(t, app, http.MethodPut, "/api/products/"+id, auth, map[string]any{"code": "lla-002"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, _ = do(t, app, http.MethodPut, "/api/products/"+id, bearer(t, testTenantB, testUserID), map[string]any{"name": "Ajeno"})
	assert.Equal(t, http.StatusNotFound, status)

	status, pres := do(t, app, http.MethodPost, "/api/products/"+id+"/presentations", auth, map[string]any{
		"name": "Juego", "factor_conversion": 5, "precio_venta": 150000,
	})
	require.Equal(t, http.StatusCreated, status, pres)

	status, body = do(t, app, http.MethodPut, "/api/products/"+id+"/presentations/"+pres["id"].(string), auth, map[string]any{
		"factor_conversion": 0,
	})
	assert.Equal(t, http.StatusBadRequest, status, "el factor debe ser positivo")
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = do(t, app, http.MethodPut, "/api/products/"+id+"/presentations/"+pres["id"].(string), auth, map[string]any{
		"factor_conversion": 6,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "6", body["factor_conversion"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_StockInsuficiente409SinEfectos(t *testing.T) {
	app := buildTestApp(t)
	auth := bearer(t, testTenantA, testUserID)
	id := createProduct(t, app, auth, "MAR-001", 2)

	status, body := do(t, app, http.MethodPost, "/api/sales", auth, map[string]any{
		"lines": []map[string]any{{"product_id": id, "quantity": 3}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	_, product := do(t, app, http.MethodGet, "/api/products/"+id, auth, nil)
	assert.Equal(t, "2", product["stock_base"], "el stock no cambia si la venta falla")
}

func TestSales_VentaYAnulacion(t *testing.T) {
	app := buildTestApp(t)
	auth := bearer(t, testTenantA, testUserID)
	id := createProduct(t, app, auth, "PIN-001", 10)

	// ─── Venta de contado ───
	status, sale := do(t, app, http.MethodPost, "/api/sales", auth, map[string]any{
		"lines": []map[string]any{{"product_id": id, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, status, sale)
	assert.Equal(t, "FAC-000001", sale["invoice_number"])
	assert.Equal(t, "Completada", sale["status"])

	_, product := do(t, app, http.MethodGet, "/api/products/"+id, auth, nil)
	assert.Equal(t, "7", product["stock_base"])

	// ─── Anulación sin motivo ───
	saleID := sale["id"].(string)
	status, _ = do(t, app, http.MethodPost, "/api/sales/"+saleID+"/void", auth, map[string]any{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, status, "el motivo es obligatorio")

	// ─── Anulación ───
	status, voided := do(t, app, http.MethodPost, "/api/sales/"+saleID+"/void", auth, map[string]any{"reason": "cliente devolvió"})
	require.Equal(t, http.StatusOK, status, voided)
	assert.Equal(t, "Anulada", voided["status"])

	_, product = do(t, app, http.MethodGet, "/api/products/"+id, auth, nil)
	assert.Equal(t, "10", product["stock_base"], "la anulación devuelve el stock")

	// ─── Segunda anulación ───
	status, body := do(t, app, http.MethodPost, "/api/sales/"+saleID+"/void", auth, map[string]any{"reason": "otra vez"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", body["code"])
}

func TestInventory_AjusteYConciliacion(t *testing.T) {
	app := buildTestApp(t)
	auth := bearer(t, testTenantA, testUserID)
	id := createProduct(t, app, auth, "CEM-001", 4)

	status, mov := do(t, app, http.MethodPost, "/api/inventory/adjustments", auth, map[string]any{
		"product_id": id, "kind": "Ajuste", "quantity": 9, "note": "conteo físico",
	})
	require.Equal(t, http.StatusCreated, status, mov)
	assert.Equal(t, "5", mov["quantity"], "el ajuste guarda el delta con signo")
	assert.Equal(t, "9", mov["stock_after"])

	status, body := do(t, app, http.MethodPost, "/api/inventory/adjustments", auth, map[string]any{
		"product_id": id, "kind": "Robo", "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, rec := do(t, app, http.MethodGet, "/api/inventory/reconciliation", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, rec["consistent"], "stock y kardex deben coincidir")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReports_SinFechaInicial400(t *testing.T) {
	app := buildTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/reports/sales", bearer(t, testTenantA, testUserID), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}
