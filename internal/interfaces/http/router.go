package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC *usecase.WarehouseUseCase
	LedgerUC    *inventory.LedgerUseCase
	TransferUC  *inventory.TransferUseCase
	StockLogUC  *inventory.StockLogUseCase
	OrderUC     *inventory.OrderUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las
// escrituras además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Warehouses: lectura para todos los roles, escritura solo admin
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/primary", warehouseHandler.GetPrimary)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/", RequireRole("admin"), warehouseHandler.Save)
	warehouses.Post("/:id/disable", RequireRole("admin"), warehouseHandler.Disable)

	// Inventory: lectura para todos, escritura admin o bodeguero
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	inv.Get("/", inventoryHandler.GetRow)
	inv.Get("/list", inventoryHandler.List)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Put("/", RequireRole("admin", "bodeguero"), inventoryHandler.Upsert)
	inv.Put("/bulk", RequireRole("admin", "bodeguero"), inventoryHandler.BulkUpsert)
	inv.Post("/adjust", RequireRole("admin", "bodeguero"), inventoryHandler.Adjust)
	inv.Post("/adjust/bulk", RequireRole("admin", "bodeguero"), inventoryHandler.BulkAdjust)

	// Transfers: admin o bodeguero
	transfers := api.Group("/transfers", RequireRole("admin", "bodeguero"))
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Transfer)
	transfers.Post("/bulk", transferHandler.TransferBulk)

	// Stock log: lectura para todos los roles
	stockLog := api.Group("/stock-log")
	stockLogHandler := NewStockLogHandler(deps.StockLogUC)
	stockLog.Get("/", stockLogHandler.List)
	stockLog.Get("/reconciliation", stockLogHandler.Reconcile)

	// Order events: el sistema de pedidos entra como admin; POS también para
	// vendedores
	orders := api.Group("/orders")
	orderHandler := NewOrderEventsHandler(deps.OrderUC)
	orders.Post("/events/status", RequireRole("admin"), orderHandler.StatusChanged)
	orders.Post("/events/item", RequireRole("admin"), orderHandler.ItemChanged)
	orders.Post("/pos", RequireRole("admin", "vendedor"), orderHandler.POSOrder)
}
