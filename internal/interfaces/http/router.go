package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/purchases"
	"github.com/jhoicas/ferreteria-api/internal/application/reports"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC   *catalog.UseCase
	InventoryUC *inventory.UseCase
	SalesUC     *sales.UseCase
	PurchasesUC *purchases.UseCase
	ReportsUC   *reports.UseCase
	JWTSecret   string
}

// AppOptions opciones del servidor fiber.
type AppOptions struct {
	Name        string
	Logger      zerolog.Logger
	SwaggerFile string // vacío o inexistente = sin /docs
	RateLimit   int    // peticiones por minuto por IP; 0 = sin límite
}

// NewApp construye la aplicación fiber con middlewares, health y rutas.
func NewApp(opts AppOptions, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: writeError,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(opts.Logger))
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
		}))
	}
	if opts.SwaggerFile != "" {
		if _, err := os.Stat(opts.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: opts.SwaggerFile,
				Path:     "docs",
				Title:    "Ferretería API",
			}))
		} else {
			opts.Logger.Warn().Str("file", opts.SwaggerFile).Msg("swagger: archivo no encontrado, /docs deshabilitado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": opts.Name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token con tenant_id y user_id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/presentations", productHandler.AddPresentation)
	products.Get("/:id/presentations", productHandler.ListPresentations)
	products.Put("/:id/presentations/:presentationId", productHandler.UpdatePresentation)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Get("/products/:id/movements", inventoryHandler.Movements)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/reconciliation", inventoryHandler.Reconcile)

	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/payments", saleHandler.RegisterPayment)
	salesGroup.Post("/:id/void", saleHandler.Void)

	purchasesGroup := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchasesUC)
	purchasesGroup.Post("/", purchaseHandler.Create)
	purchasesGroup.Get("/", purchaseHandler.List)
	purchasesGroup.Get("/:id", purchaseHandler.GetByID)
	purchasesGroup.Delete("/:id", purchaseHandler.Delete)
	purchasesGroup.Post("/:id/receive", purchaseHandler.Receive)
	purchasesGroup.Post("/:id/payments", purchaseHandler.RegisterPayment)
	purchasesGroup.Post("/:id/pay-and-receive", purchaseHandler.PayAndReceive)

	reportsGroup := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportsUC)
	reportsGroup.Get("/dashboard", reportHandler.Dashboard)
	reportsGroup.Get("/sales", reportHandler.Sales)
}
