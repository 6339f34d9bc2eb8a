package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockHandler disponibilidad por ubicación, entradas, ubicación de mercancía y ajustes.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// ListAvailable godoc
// @Summary      Disponibilidad por ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "Bodega"
// @Param        product_id    query  string  true  "Producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/available [get]
func (h *StockHandler) ListAvailable(c *fiber.Ctx) error {
	warehouseID, productID := c.Query("warehouse_id"), c.Query("product_id")
	rows, err := h.uc.ListAvailable(c.Context(), warehouseID, productID)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.AvailabilityResponse{WarehouseID: warehouseID, ProductID: productID, Locations: make([]dto.LocationStockDTO, 0, len(rows))}
	for _, r := range rows {
		out.Total += r.Quantity
		out.Locations = append(out.Locations, dto.LocationStockDTO{
			LocationID: r.LocationID, LocationCode: r.LocationCode, Quantity: r.Quantity, UpdatedAt: r.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Registrar entrada (INBOUND)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "Entrada"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	m, err := h.uc.Receive(c.Context(), inventory.ReceiveInput{
		UserID:      GetUserID(c),
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Reference:   in.Reference,
		UnitCost:    in.UnitCost,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementDTOs([]*entity.Movement{m})[0])
}

// PutAway godoc
// @Summary      Ubicar mercancía recibida en un estante
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PutAwayRequest  true  "Ubicación"
// @Success      200   {object}  dto.QuantityResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/put-away [post]
func (h *StockHandler) PutAway(c *fiber.Ctx) error {
	var in dto.PutAwayRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	qty, err := h.uc.PutAway(c.Context(), inventory.PutAwayInput{
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		Quantity:    in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.QuantityResponse{LocationID: in.LocationID, Quantity: qty})
}

// Adjust godoc
// @Summary      Ajuste directo de una ubicación
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "Ajuste"
// @Success      200   {object}  dto.QuantityResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	qty, err := h.uc.AdjustQuantity(c.Context(), inventory.AdjustInput{
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		Delta:       in.Delta,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.QuantityResponse{LocationID: in.LocationID, Quantity: qty})
}
