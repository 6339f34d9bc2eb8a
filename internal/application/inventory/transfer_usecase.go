package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const opTransfer = "transfer"

// TransferUseCase orquesta traslados entre bodegas repartiendo la toma entre varias ubicaciones de origen.
// Todas las escrituras (encabezado, decrementos, TRANSFER_OUT por línea y TRANSFER_IN por producto)
// se confirman en una sola transacción.
type TransferUseCase struct {
	txRunner      TxRunner
	stockRepo     repository.LocationStockRepository
	movementRepo  repository.MovementRepository
	transferRepo  repository.TransferRepository
	warehouseRepo repository.WarehouseRepository
	collaborators
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TxRunner,
	stockRepo repository.LocationStockRepository,
	movementRepo repository.MovementRepository,
	transferRepo repository.TransferRepository,
	warehouseRepo repository.WarehouseRepository,
	opts ...Option,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:      txRunner,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		transferRepo:  transferRepo,
		warehouseRepo: warehouseRepo,
		collaborators: newCollaborators(opts),
	}
}

// TransferItemInput producto del carrito y su distribución por ubicación de origen.
type TransferItemInput struct {
	ProductID    string
	Distribution []entity.DistributionLine
}

// TransferInput entrada para crear un traslado.
type TransferInput struct {
	UserID                 string
	OriginWarehouseID      string
	DestinationWarehouseID string
	OriginProject          string
	DestinationProject     string
	Authorizer             string
	Items                  []TransferItemInput
}

// TransferResult encabezado y movimientos escritos.
type TransferResult struct {
	Transfer  *entity.Transfer
	Movements []*entity.Movement
}

// ManifestLine línea del manifiesto: producto, cantidad y ubicación de origen.
type ManifestLine struct {
	ProductID  string
	LocationID string
	Quantity   int64
}

// TransferManifest reconstrucción de un traslado desde su encabezado y sus TRANSFER_OUT.
type TransferManifest struct {
	Transfer *entity.Transfer
	Lines    []ManifestLine
}

// Validate verifica campos requeridos sin tocar el almacenamiento.
func (in TransferInput) Validate() error {
	if strings.TrimSpace(in.OriginWarehouseID) == "" {
		return domain.Invalid("origin_warehouse_id", "bodega de origen requerida")
	}
	if strings.TrimSpace(in.DestinationWarehouseID) == "" {
		return domain.Invalid("destination_warehouse_id", "bodega de destino requerida")
	}
	if in.OriginWarehouseID == in.DestinationWarehouseID {
		return domain.Invalid("destination_warehouse_id", "origen y destino deben ser distintos")
	}
	if strings.TrimSpace(in.Authorizer) == "" {
		return domain.Invalid("authorizer", "autorizador requerido")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("items", "el carrito está vacío")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return domain.Invalid("product_id", "producto requerido")
		}
		var total int64
		for _, line := range item.Distribution {
			if line.Quantity < 0 {
				return domain.Invalid("quantity", "cantidad negativa")
			}
			if line.Quantity > 0 && strings.TrimSpace(line.LocationID) == "" {
				return domain.Invalid("location_id", "ubicación requerida")
			}
			total += line.Quantity
		}
		if total == 0 {
			return domain.Invalid("distribution", "la distribución de "+item.ProductID+" no toma ninguna cantidad")
		}
	}
	return nil
}

// CreateTransfer valida, verifica disponibilidad y confirma el traslado como una unidad.
// La bodega de destino recibe el TRANSFER_IN contable; su LocationStock se actualiza después
// con PutAway (recepción en dos fases), por eso el motor de reconciliación lo reporta como pendiente.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	res, err := uc.createTransfer(ctx, input)
	if err != nil {
		uc.metrics.Failed(opTransfer, failureReason(err))
		uc.log.Warn().Err(err).
			Str("origin", input.OriginWarehouseID).
			Str("destination", input.DestinationWarehouseID).
			Msg("traslado rechazado")
		return nil, err
	}
	uc.metrics.Committed(opTransfer)
	uc.log.Info().
		Str("folio", res.Transfer.Folio).
		Str("origin", input.OriginWarehouseID).
		Str("destination", input.DestinationWarehouseID).
		Int("movements", len(res.Movements)).
		Msg("traslado confirmado")
	return res, nil
}

func (uc *TransferUseCase) createTransfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	for _, id := range []string{input.OriginWarehouseID, input.DestinationWarehouseID} {
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}
	for _, item := range input.Items {
		available, err := uc.stockRepo.ListAvailable(ctx, input.OriginWarehouseID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if err := checkAvailability(item.ProductID, available, item.Distribution); err != nil {
			return nil, err
		}
	}

	release := uc.gate.Hold()
	defer release()

	var res *TransferResult
	err := runWithFolioRetry(ctx, uc.txRunner, func(repos TxRepos) error {
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
	uc.publish(ctx, transferEvents(res))
	return res, nil
}

func (uc *TransferUseCase) commit(ctx context.Context, repos TxRepos, input TransferInput) (*TransferResult, error) {
	folio, err := NextFolio(ctx, repos.Folios, FolioFamilyTransfer)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	transfer := &entity.Transfer{
		ID:                     uuid.New().String(),
		Folio:                  folio,
		OriginWarehouseID:      input.OriginWarehouseID,
		DestinationWarehouseID: input.DestinationWarehouseID,
		OriginProject:          input.OriginProject,
		DestinationProject:     input.DestinationProject,
		Authorizer:             input.Authorizer,
		CreatedAt:              now,
		CreatedBy:              input.UserID,
	}
	if err := repos.Transfers.Create(ctx, transfer); err != nil {
		return nil, err
	}

	res := &TransferResult{Transfer: transfer}
	for _, item := range input.Items {
		product, err := repos.Products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}

		var total int64
		for _, line := range item.Distribution {
			if line.Quantity <= 0 {
				continue
			}
			if err := takeFromLocation(ctx, repos, input.OriginWarehouseID, item.ProductID, line.LocationID, line.Quantity); err != nil {
				return nil, err
			}
			out := uc.movement(transfer, product, entity.MovementTransferOut, input.OriginWarehouseID, line.Quantity, now)
			out.SourceLocationID = line.LocationID
			if err := repos.Movements.Append(ctx, out); err != nil {
				return nil, err
			}
			res.Movements = append(res.Movements, out)
			total += line.Quantity
		}

		// Un solo TRANSFER_IN agregado por producto en destino.
		in := uc.movement(transfer, product, entity.MovementTransferIn, input.DestinationWarehouseID, total, now)
		if err := repos.Movements.Append(ctx, in); err != nil {
			return nil, err
		}
		res.Movements = append(res.Movements, in)
	}
	return res, nil
}

func (uc *TransferUseCase) movement(t *entity.Transfer, p *entity.Product, typ entity.MovementType, warehouseID string, qty int64, now time.Time) *entity.Movement {
	return &entity.Movement{
		ID:                 uuid.New().String(),
		Type:               typ,
		WarehouseID:        warehouseID,
		ProductID:          p.ID,
		Quantity:           qty,
		Folio:              t.Folio,
		Authorizer:         t.Authorizer,
		OriginProject:      t.OriginProject,
		DestinationProject: t.DestinationProject,
		UnitCost:           p.Cost,
		TotalCost:          p.Cost.Mul(decimal.NewFromInt(qty)),
		CreatedAt:          now,
		CreatedBy:          t.CreatedBy,
	}
}

// GetManifest reconstruye las líneas originales (producto, cantidad, ubicación) de un traslado.
func (uc *TransferUseCase) GetManifest(ctx context.Context, folio string) (*TransferManifest, error) {
	if strings.TrimSpace(folio) == "" {
		return nil, domain.Invalid("folio", "folio requerido")
	}
	transfer, err := uc.transferRepo.GetByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	manifest := &TransferManifest{Transfer: transfer}
	for _, m := range movements {
		if m.Type != entity.MovementTransferOut {
			continue
		}
		manifest.Lines = append(manifest.Lines, ManifestLine{
			ProductID:  m.ProductID,
			LocationID: m.SourceLocationID,
			Quantity:   m.Quantity,
		})
	}
	return manifest, nil
}

func transferEvents(res *TransferResult) []ChangeEvent {
	events := make([]ChangeEvent, 0, len(res.Movements)*2)
	for _, m := range res.Movements {
		events = append(events, ChangeEvent{
			Kind: LedgerAppended, WarehouseID: m.WarehouseID, ProductID: m.ProductID,
			Delta: m.Delta(), Folio: m.Folio, At: m.CreatedAt,
		})
		if m.Type == entity.MovementTransferOut {
			events = append(events, ChangeEvent{
				Kind: StockChanged, WarehouseID: m.WarehouseID, ProductID: m.ProductID,
				Delta: -m.Quantity, Folio: m.Folio, At: m.CreatedAt,
			})
		}
	}
	return events
}
