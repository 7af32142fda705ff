package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/application/usecase"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ventas/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	CustomerUC  *usecase.CustomerUseCase
	Inventory   *inventory.Service
	Ledger      *inventory.Ledger
	Sales       *sales.Engine
	Receipt     *sales.ReceiptUseCase
	Idempotency *cache.IdempotencyStore // nil = sin deduplicación
	Metrics     *metrics.Metrics        // nil = sin /metrics
	JWTSecret   string
	SwaggerFile string
	AppName     string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	var observer requestObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Use(RequestLogger(deps.Log, observer))

	// Swagger UI: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Inventario y Ventas API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Todo /api requiere Bearer Token.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), Idempotency(deps.Idempotency, deps.Log))

	anyRole := RequireRole(jwt.RoleBodeguero, jwt.RoleVendedor)
	adminOnly := RequireRole()
	warehouseStaff := RequireRole(jwt.RoleBodeguero)
	salesStaff := RequireRole(jwt.RoleVendedor)

	// Catálogo: lectura para todos, alta solo admin
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", anyRole, productHandler.GetByID)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.Log)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Log)
	customers.Post("/", salesStaff, customerHandler.Create)
	customers.Get("/:id", anyRole, customerHandler.GetByID)

	// Stock por bodega. Las rutas fijas van antes de /:product_id/:warehouse_id.
	stock := api.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.Ledger, deps.Log)
	stock.Get("/:product_id/below-minimum", anyRole, inventoryHandler.BelowMinimum)
	stock.Get("/:product_id/reconcile", warehouseStaff, inventoryHandler.Reconcile)
	stock.Get("/:product_id/:warehouse_id", anyRole, inventoryHandler.LocationStock)
	stock.Get("/:product_id", anyRole, inventoryHandler.ProductStock)
	stock.Patch("/:product_id/:warehouse_id/active", warehouseStaff, inventoryHandler.SetActive)
	stock.Patch("/:product_id/:warehouse_id/min-stock", warehouseStaff, inventoryHandler.SetMinStock)

	// Kardex
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger, deps.Log)
	movements.Post("/inbound", warehouseStaff, movementHandler.Inbound)
	movements.Post("/outbound", warehouseStaff, movementHandler.Outbound)
	movements.Post("/transfer", warehouseStaff, movementHandler.Transfer)
	movements.Post("/adjustment", warehouseStaff, movementHandler.Adjustment)
	movements.Get("/product/:product_id", anyRole, movementHandler.ByProduct)
	movements.Get("/warehouse/:warehouse_id", anyRole, movementHandler.ByWarehouse)
	movements.Get("/type/:type", anyRole, movementHandler.ByType)
	movements.Get("/reference/:reference", anyRole, movementHandler.ByReference)
	movements.Get("/:id", anyRole, movementHandler.GetByID)

	// Ventas
	salesGroup := api.Group("/sales")
	salesHandler := NewSalesHandler(deps.Sales, deps.Receipt, deps.Log)
	salesGroup.Post("/", salesStaff, salesHandler.Create)
	salesGroup.Get("/", anyRole, salesHandler.List)
	salesGroup.Get("/:id", anyRole, salesHandler.GetByID)
	salesGroup.Get("/:id/receipt", anyRole, salesHandler.Receipt)
	salesGroup.Put("/:id/lines", salesStaff, salesHandler.ReplaceLines)
	salesGroup.Post("/:id/finalize", salesStaff, salesHandler.Finalize)
	salesGroup.Post("/:id/cancel", salesStaff, salesHandler.Cancel)
	salesGroup.Post("/:id/payments", salesStaff, salesHandler.AddPayment)
	salesGroup.Post("/:id/recompute", salesStaff, salesHandler.Recompute)
}
