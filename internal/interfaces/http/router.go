package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC        *inventory.StockUseCase
	TransferUC     *inventory.TransferUseCase
	DispatchUC     *inventory.DispatchUseCase
	Reconciliation *inventory.ReconciliationService
	Metrics        nethttp.Handler // nil = sin /metrics
	JWTSecret      string
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleAuditor)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admins := RequireRole(jwt.RoleAdmin)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/available", readers, stockHandler.ListAvailable)
	stock.Post("/receipts", writers, stockHandler.Receive)
	stock.Post("/put-away", writers, stockHandler.PutAway)
	stock.Post("/adjustments", admins, stockHandler.Adjust)

	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", writers, transferHandler.Create)
	transfers.Get("/:folio", readers, transferHandler.GetManifest)

	dispatches := api.Group("/dispatches")
	dispatchHandler := NewDispatchHandler(deps.DispatchUC)
	dispatches.Post("/pick", writers, dispatchHandler.Pick)
	dispatches.Post("/", writers, dispatchHandler.Create)
	dispatches.Get("/:folio", readers, dispatchHandler.Get)
	dispatches.Post("/:folio/proof", writers, dispatchHandler.AttachProof)

	rec := api.Group("/reconciliation")
	recHandler := NewReconciliationHandler(deps.Reconciliation)
	rec.Get("/", readers, recHandler.Report)
	rec.Get("/pending-count", readers, recHandler.PendingCount)
	rec.Post("/recompute", admins, recHandler.Recompute)
}
