package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// TransferHandler traslados entre bodegas.
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traslado entre bodegas
// @Description  Toma de varias ubicaciones de origen; todo o nada.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	items := make([]inventory.TransferItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.TransferItemInput{ProductID: it.ProductID, Distribution: toDistribution(it.Distribution)})
	}
	res, err := h.uc.CreateTransfer(c.Context(), inventory.TransferInput{
		UserID:                 GetUserID(c),
		OriginWarehouseID:      in.OriginWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		OriginProject:          in.OriginProject,
		DestinationProject:     in.DestinationProject,
		Authorizer:             in.Authorizer,
		Items:                  items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(res))
}

// GetManifest godoc
// @Summary      Manifiesto de un traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        folio  path  string  true  "Folio TRF-n"
// @Success      200  {object}  dto.TransferManifestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{folio} [get]
func (h *TransferHandler) GetManifest(c *fiber.Ctx) error {
	m, err := h.uc.GetManifest(c.Context(), c.Params("folio"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.TransferManifestResponse{
		Folio:                  m.Transfer.Folio,
		OriginWarehouseID:      m.Transfer.OriginWarehouseID,
		DestinationWarehouseID: m.Transfer.DestinationWarehouseID,
		Authorizer:             m.Transfer.Authorizer,
		CreatedAt:              m.Transfer.CreatedAt,
		Lines:                  make([]dto.ManifestLineDTO, 0, len(m.Lines)),
	}
	for _, l := range m.Lines {
		out.Lines = append(out.Lines, dto.ManifestLineDTO{ProductID: l.ProductID, LocationID: l.LocationID, Quantity: l.Quantity})
	}
	return c.JSON(out)
}
