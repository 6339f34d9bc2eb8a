package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ReconciliationHandler diferencia entre saldo contable y físico.
type ReconciliationHandler struct {
	svc *inventory.ReconciliationService
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(svc *inventory.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc}
}

// Report godoc
// @Summary      Reporte de reconciliación
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        pending  query  bool  false  "Solo llaves con mercancía pendiente por ubicar"
// @Success      200  {object}  dto.ReconciliationReport
// @Router       /api/reconciliation [get]
func (h *ReconciliationHandler) Report(c *fiber.Ctx) error {
	var balances []domaininv.Balance
	if c.QueryBool("pending") {
		balances = h.svc.Pending()
	} else {
		balances = h.svc.Report()
	}
	sum := h.svc.Summary()
	out := dto.ReconciliationReport{
		PendingKeys: sum.PendingKeys,
		AnomalyKeys: sum.AnomalyKeys,
		Balances:    make([]dto.BalanceDTO, 0, len(balances)),
	}
	for _, b := range balances {
		out.Balances = append(out.Balances, dto.BalanceDTO{
			WarehouseID: b.Key.WarehouseID,
			ProductID:   b.Key.ProductID,
			Accounting:  b.Accounting,
			Physical:    b.Physical,
			Pending:     b.Pending(),
		})
	}
	return c.JSON(out)
}

// PendingCount godoc
// @Summary      Número de llaves con mercancía pendiente por ubicar
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PendingCountResponse
// @Router       /api/reconciliation/pending-count [get]
func (h *ReconciliationHandler) PendingCount(c *fiber.Ctx) error {
	return c.JSON(dto.PendingCountResponse{Count: h.svc.PendingCount()})
}

// Recompute godoc
// @Summary      Recalcular la reconciliación desde el almacenamiento
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReport
// @Router       /api/reconciliation/recompute [post]
func (h *ReconciliationHandler) Recompute(c *fiber.Ctx) error {
	if _, err := h.svc.Recompute(c.Context()); err != nil {
		return respondError(c, err)
	}
	return h.Report(c)
}
