package inventory

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	opDispatch = "dispatch"
	opProof    = "dispatch_proof"
)

// DispatchUseCase orquesta salidas de almacén hacia proyecto, subcontratista o tercero externo.
// El commit es una sola transacción: verificación, decrementos, movimientos OUTBOUND y contador de producto.
type DispatchUseCase struct {
	txRunner     TxRunner
	stockRepo    repository.LocationStockRepository
	movementRepo repository.MovementRepository
	dispatchRepo repository.DispatchRepository
	warehouses   repository.WarehouseRepository
	storage      ProofStorage
	collaborators
}

// NewDispatchUseCase construye el caso de uso. storage puede ser nil (evidencias deshabilitadas).
func NewDispatchUseCase(
	txRunner TxRunner,
	stockRepo repository.LocationStockRepository,
	movementRepo repository.MovementRepository,
	dispatchRepo repository.DispatchRepository,
	warehouses repository.WarehouseRepository,
	storage ProofStorage,
	opts ...Option,
) *DispatchUseCase {
	return &DispatchUseCase{
		txRunner:      txRunner,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		dispatchRepo:  dispatchRepo,
		warehouses:    warehouses,
		storage:       storage,
		collaborators: newCollaborators(opts),
	}
}

// DispatchLine línea del carrito ligada a una sola ubicación de origen.
type DispatchLine struct {
	ProductID  string
	LocationID string
	Quantity   int64
}

// DispatchInput encabezado más líneas de la salida.
type DispatchInput struct {
	UserID          string
	WarehouseID     string
	Mode            entity.DispatchMode
	ProjectID       string
	SubcontractorID string
	ExternalCompany string
	Reason          string
	Receiver        entity.Receiver
	Lines           []DispatchLine
}

// DispatchResult documento y movimientos escritos.
type DispatchResult struct {
	Document  *entity.DispatchDocument
	Movements []*entity.Movement
}

// DispatchDetail documento consultado con sus líneas y evidencia (si existe).
type DispatchDetail struct {
	Document  *entity.DispatchDocument
	Movements []*entity.Movement
	Proof     *entity.DispatchProof
}

// Validate aplica las reglas de campos requeridos por modo.
func (in DispatchInput) Validate() error {
	if strings.TrimSpace(in.WarehouseID) == "" {
		return domain.Invalid("warehouse_id", "bodega requerida")
	}
	switch in.Mode {
	case entity.DispatchDirect:
		if strings.TrimSpace(in.ProjectID) == "" {
			return domain.Invalid("project_id", "proyecto requerido para salida directa")
		}
	case entity.DispatchSubcontract:
		if strings.TrimSpace(in.ProjectID) == "" {
			return domain.Invalid("project_id", "proyecto requerido para subcontrato")
		}
		if strings.TrimSpace(in.SubcontractorID) == "" {
			return domain.Invalid("subcontractor_id", "subcontratista requerido")
		}
	case entity.DispatchExternal:
		if strings.TrimSpace(in.ExternalCompany) == "" {
			return domain.Invalid("external_company", "empresa externa requerida")
		}
	default:
		return domain.Invalid("mode", fmt.Sprintf("modo de salida desconocido %q", in.Mode))
	}
	if strings.TrimSpace(in.Receiver.Name) == "" {
		return domain.Invalid("receiver.name", "nombre de quien recibe requerido")
	}
	if strings.TrimSpace(in.Receiver.IDNumber) == "" {
		return domain.Invalid("receiver.id_number", "identificación de quien recibe requerida")
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("lines", "el carrito está vacío")
	}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.Invalid("product_id", "producto requerido")
		}
		if strings.TrimSpace(l.LocationID) == "" {
			return domain.Invalid("location_id", "ubicación de origen requerida")
		}
		if l.Quantity <= 0 {
			return domain.Invalid("quantity", "la cantidad debe ser mayor a cero")
		}
	}
	return nil
}

// Pick lista las ubicaciones disponibles del producto y convierte la asignación del usuario
// en líneas de carrito, una por ubicación (no se agregan por producto). Es consultivo:
// el commit vuelve a verificar dentro de la transacción.
func (uc *DispatchUseCase) Pick(ctx context.Context, warehouseID, productID string, allocations []entity.DistributionLine) ([]DispatchLine, error) {
	if strings.TrimSpace(warehouseID) == "" {
		return nil, domain.Invalid("warehouse_id", "bodega requerida")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, domain.Invalid("product_id", "producto requerido")
	}
	available, err := uc.stockRepo.ListAvailable(ctx, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		if a.Quantity < 0 {
			return nil, domain.Invalid("quantity", "cantidad negativa")
		}
	}
	if err := checkAvailability(productID, available, allocations); err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(available))
	for _, row := range available {
		known[row.LocationID] = true
	}
	var lines []DispatchLine
	for _, a := range allocations {
		if a.Quantity == 0 {
			continue
		}
		if !known[a.LocationID] {
			return nil, &domain.InsufficientStockError{ProductID: productID, LocationID: a.LocationID, Requested: a.Quantity}
		}
		lines = append(lines, DispatchLine{ProductID: productID, LocationID: a.LocationID, Quantity: a.Quantity})
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("allocations", "la asignación no toma ninguna cantidad")
	}
	return lines, nil
}

// Dispatch confirma la salida completa o nada: si alguna línea no puede surtirse se devuelve
// *domain.InsufficientStockError y ninguna ubicación se modifica.
func (uc *DispatchUseCase) Dispatch(ctx context.Context, input DispatchInput) (*DispatchResult, error) {
	res, err := uc.dispatch(ctx, input)
	if err != nil {
		uc.metrics.Failed(opDispatch, failureReason(err))
		uc.log.Warn().Err(err).Str("warehouse", input.WarehouseID).Str("mode", string(input.Mode)).Msg("salida rechazada")
		return nil, err
	}
	uc.metrics.Committed(opDispatch)
	uc.log.Info().
		Str("folio", res.Document.Folio).
		Str("warehouse", input.WarehouseID).
		Str("mode", string(input.Mode)).
		Int("lines", len(res.Movements)).
		Msg("salida confirmada")
	return res, nil
}

func (uc *DispatchUseCase) dispatch(ctx context.Context, input DispatchInput) (*DispatchResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	wh, err := uc.warehouses.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	release := uc.gate.Hold()
	defer release()

	var res *DispatchResult
	err = runWithFolioRetry(ctx, uc.txRunner, func(repos TxRepos) error {
		r, err := uc.commit(ctx, repos, input)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, dispatchEvents(res))
	return res, nil
}

func (uc *DispatchUseCase) commit(ctx context.Context, repos TxRepos, input DispatchInput) (*DispatchResult, error) {
	folio, err := NextFolio(ctx, repos.Folios, FolioFamilyDispatch)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	doc := &entity.DispatchDocument{
		ID:              uuid.New().String(),
		Folio:           folio,
		WarehouseID:     input.WarehouseID,
		Mode:            input.Mode,
		ProjectID:       input.ProjectID,
		SubcontractorID: input.SubcontractorID,
		ExternalCompany: input.ExternalCompany,
		Reason:          input.Reason,
		Receiver:        input.Receiver,
		CreatedAt:       now,
		CreatedBy:       input.UserID,
	}
	if doc.Mode == entity.DispatchExternal {
		doc.ProjectID = ""
	}
	if err := repos.Dispatches.Create(ctx, doc); err != nil {
		return nil, err
	}

	res := &DispatchResult{Document: doc}
	products := make(map[string]*entity.Product)
	counters := make(map[string]int64)
	var order []string
	for _, line := range input.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			product, err = repos.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, domain.ErrNotFound
			}
			products[line.ProductID] = product
			order = append(order, line.ProductID)
		}
		if err := takeFromLocation(ctx, repos, input.WarehouseID, line.ProductID, line.LocationID, line.Quantity); err != nil {
			return nil, err
		}
		m := &entity.Movement{
			ID:                 uuid.New().String(),
			Type:               entity.MovementOutbound,
			WarehouseID:        input.WarehouseID,
			ProductID:          line.ProductID,
			Quantity:           line.Quantity,
			Folio:              folio,
			SourceLocationID:   line.LocationID,
			DestinationProject: doc.ProjectID,
			DispatchMode:       doc.Mode,
			UnitCost:           product.Cost,
			TotalCost:          product.Cost.Mul(decimal.NewFromInt(line.Quantity)),
			CreatedAt:          now,
			CreatedBy:          input.UserID,
		}
		if err := repos.Movements.Append(ctx, m); err != nil {
			return nil, err
		}
		res.Movements = append(res.Movements, m)
		counters[line.ProductID] += line.Quantity
	}

	// El contador desnormalizado se actualiza en la misma transacción.
	for _, productID := range order {
		if err := repos.Products.AdjustStockCounter(ctx, productID, -counters[productID]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetDispatch documento, líneas y evidencia de entrega.
func (uc *DispatchUseCase) GetDispatch(ctx context.Context, folio string) (*DispatchDetail, error) {
	if strings.TrimSpace(folio) == "" {
		return nil, domain.Invalid("folio", "folio requerido")
	}
	doc, err := uc.dispatchRepo.GetByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	proof, err := uc.dispatchRepo.GetProof(ctx, folio)
	if err != nil {
		return nil, err
	}
	return &DispatchDetail{Document: doc, Movements: movements, Proof: proof}, nil
}

// AttachProof sube la evidencia firmada de entrega y la asocia al folio de la salida.
// Si la subida funciona pero el registro falla se devuelve *domain.PartialFailureError.
func (uc *DispatchUseCase) AttachProof(ctx context.Context, folio, fileName, contentType string, r io.Reader, userID string) (*entity.DispatchProof, error) {
	if uc.storage == nil {
		return nil, domain.ErrProofStorageUnavailable
	}
	if strings.TrimSpace(folio) == "" {
		return nil, domain.Invalid("folio", "folio requerido")
	}
	doc, err := uc.dispatchRepo.GetByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}

	objectName := path.Join("dispatches", folio, uuid.New().String()+path.Ext(fileName))
	url, err := uc.storage.Upload(ctx, objectName, contentType, r)
	if err != nil {
		uc.metrics.Failed(opProof, "upload")
		return nil, fmt.Errorf("subir evidencia: %w", err)
	}
	proof := &entity.DispatchProof{
		Folio:      folio,
		ObjectURL:  url,
		UploadedAt: uc.now(),
		UploadedBy: userID,
	}
	if err := uc.dispatchRepo.AttachProof(ctx, proof); err != nil {
		perr := &domain.PartialFailureError{Folio: folio, Completed: []string{"upload " + url}, Failed: "registro de evidencia", Err: err}
		uc.metrics.Failed(opProof, failureReason(perr))
		uc.log.Error().Err(err).Str("folio", folio).Str("object", url).Msg("evidencia subida sin registrar")
		return nil, perr
	}
	uc.metrics.Committed(opProof)
	return proof, nil
}

func dispatchEvents(res *DispatchResult) []ChangeEvent {
	events := make([]ChangeEvent, 0, len(res.Movements)*2)
	for _, m := range res.Movements {
		events = append(events,
			ChangeEvent{Kind: LedgerAppended, WarehouseID: m.WarehouseID, ProductID: m.ProductID, Delta: m.Delta(), Folio: m.Folio, At: m.CreatedAt},
			ChangeEvent{Kind: StockChanged, WarehouseID: m.WarehouseID, ProductID: m.ProductID, Delta: -m.Quantity, Folio: m.Folio, At: m.CreatedAt},
		)
	}
	return events
}
