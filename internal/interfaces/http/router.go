package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/application/usecase"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

// Roles reconocidos en el token.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC   *usecase.WarehouseUseCase
	ProductUC     *usecase.ProductUseCase
	Purchases     *inventory.PurchaseUseCase
	PurchaseOrder *inventory.PurchaseOrderUseCase
	Sales         *inventory.SaleUseCase
	Adjustments   *inventory.AdjustmentUseCase
	Returns       *inventory.PurchaseReturnUseCase
	Transfers     *inventory.TransferUseCase
	StockQuery    *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Jobs          ReconcileEnqueuer // opcional
	Tenants       TenantResolver
	DefaultTenant string
	JWTSecret     string
	Log           *logger.Logger
}

// Router registra las rutas de la API. Todas las rutas /api requieren tenant y Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api",
		TenantMiddleware(deps.Tenants, deps.DefaultTenant, deps.Log),
		AuthMiddleware(deps.JWTSecret),
	)
	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)
	salesRoles := RequireRole(RoleAdmin, RoleVendedor)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", RequireRole(RoleAdmin), warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", stockRoles, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", stockRoles, productHandler.Update)

	// Compras y órdenes de compra
	purchaseHandler := NewPurchaseHandler(deps.Purchases, deps.PurchaseOrder)
	purchases := api.Group("/purchases", stockRoles)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/:id", purchaseHandler.Get)
	purchases.Post("/:id/receive", purchaseHandler.Receive)
	orders := api.Group("/purchase-orders", stockRoles)
	orders.Post("/", purchaseHandler.CreateOrder)
	orders.Get("/:id", purchaseHandler.GetOrder)
	orders.Patch("/:id/status", purchaseHandler.UpdateOrderStatus)

	// Cotizaciones (venta de repuestos)
	quotationHandler := NewQuotationHandler(deps.Sales)
	quotations := api.Group("/quotations", salesRoles)
	quotations.Post("/", quotationHandler.Create)
	quotations.Get("/:id", quotationHandler.Get)
	quotations.Put("/:id", quotationHandler.Update)

	// Ajustes, devoluciones y traslados
	movementHandler := NewMovementHandler(deps.Adjustments, deps.Returns, deps.Transfers)
	api.Post("/adjustments", stockRoles, movementHandler.CreateAdjustment)
	api.Post("/purchase-returns", stockRoles, movementHandler.CreateReturn)
	api.Put("/purchase-returns/:id", stockRoles, movementHandler.UpdateReturn)
	api.Post("/stock-transfers", stockRoles, movementHandler.CreateTransfer)
	api.Get("/stock-transfers/:id", stockRoles, movementHandler.GetTransfer)

	// Consultas de stock
	stockHandler := NewStockHandler(deps.StockQuery, deps.Replenishment, deps.Jobs)
	stock := api.Group("/stock")
	stock.Get("/positions", stockHandler.Positions)
	stock.Get("/current", stockHandler.Current)
	stock.Get("/movements", stockHandler.Movements)
	stock.Get("/documents/:type/:id", stockHandler.DocumentEntries)
	stock.Get("/replenishment", stockRoles, stockHandler.Replenishment)
	stock.Get("/verify", RequireRole(RoleAdmin), stockHandler.Verify)
	stock.Post("/reconcile", RequireRole(RoleAdmin), stockHandler.Reconcile)
}
