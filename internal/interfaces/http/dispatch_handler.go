package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DispatchHandler salidas de almacén y evidencias de entrega.
type DispatchHandler struct {
	uc *inventory.DispatchUseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *inventory.DispatchUseCase) *DispatchHandler {
	return &DispatchHandler{uc: uc}
}

// Pick godoc
// @Summary      Convertir una asignación por ubicación en líneas de carrito
// @Tags         dispatches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PickRequest  true  "Asignación"
// @Success      200   {object}  dto.PickResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatches/pick [post]
func (h *DispatchHandler) Pick(c *fiber.Ctx) error {
	var in dto.PickRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	lines, err := h.uc.Pick(c.Context(), in.WarehouseID, in.ProductID, toDistribution(in.Allocations))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.PickResponse{Lines: make([]dto.DispatchLineRequest, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.DispatchLineRequest{ProductID: l.ProductID, LocationID: l.LocationID, Quantity: l.Quantity})
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Confirmar salida de almacén
// @Description  Descuenta cada línea de su ubicación y escribe un OUTBOUND por línea; todo o nada.
// @Tags         dispatches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDispatchRequest  true  "Salida"
// @Success      201   {object}  dto.DispatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatches [post]
func (h *DispatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDispatchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	lines := make([]inventory.DispatchLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.DispatchLine{ProductID: l.ProductID, LocationID: l.LocationID, Quantity: l.Quantity})
	}
	res, err := h.uc.Dispatch(c.Context(), inventory.DispatchInput{
		UserID:          GetUserID(c),
		WarehouseID:     in.WarehouseID,
		Mode:            entity.DispatchMode(in.Mode),
		ProjectID:       in.ProjectID,
		SubcontractorID: in.SubcontractorID,
		ExternalCompany: in.ExternalCompany,
		Reason:          in.Reason,
		Receiver:        entity.Receiver{Name: in.Receiver.Name, IDNumber: in.Receiver.IDNumber, Stage: in.Receiver.Stage},
		Lines:           lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDispatchResponse(res.Document, res.Movements, nil))
}

// Get godoc
// @Summary      Consultar salida por folio
// @Tags         dispatches
// @Security     Bearer
// @Produce      json
// @Param        folio  path  string  true  "Folio SAL-nnnnnn"
// @Success      200  {object}  dto.DispatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{folio} [get]
func (h *DispatchHandler) Get(c *fiber.Ctx) error {
	d, err := h.uc.GetDispatch(c.Context(), c.Params("folio"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDispatchResponse(d.Document, d.Movements, d.Proof))
}

// AttachProof godoc
// @Summary      Subir evidencia firmada de entrega
// @Tags         dispatches
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        folio  path      string  true  "Folio SAL-nnnnnn"
// @Param        file   formData  file    true  "PDF, JPEG o PNG"
// @Success      201  {object}  dto.DispatchProofDTO
// @Success      207  {object}  dto.PartialFailureResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{folio}/proof [post]
func (h *DispatchHandler) AttachProof(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, domain.Invalid("file", "archivo requerido"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	proof, err := h.uc.AttachProof(c.Context(), c.Params("folio"), fh.Filename, fh.Header.Get("Content-Type"), f, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DispatchProofDTO{
		ObjectURL: proof.ObjectURL, UploadedAt: proof.UploadedAt, UploadedBy: proof.UploadedBy,
	})
}
