package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	opReceive = "receive"
	opAdjust  = "adjust"
)

// StockUseCase consulta de disponibilidad, entradas (INBOUND) y ubicación de mercancía pendiente.
type StockUseCase struct {
	txRunner   TxRunner
	stockRepo  repository.LocationStockRepository
	warehouses repository.WarehouseRepository
	collaborators
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, stockRepo repository.LocationStockRepository, warehouses repository.WarehouseRepository, opts ...Option) *StockUseCase {
	return &StockUseCase{
		txRunner:      txRunner,
		stockRepo:     stockRepo,
		warehouses:    warehouses,
		collaborators: newCollaborators(opts),
	}
}

// ListAvailable ubicaciones con existencia del producto en la bodega.
func (uc *StockUseCase) ListAvailable(ctx context.Context, warehouseID, productID string) ([]*entity.LocationStock, error) {
	if strings.TrimSpace(warehouseID) == "" {
		return nil, domain.Invalid("warehouse_id", "bodega requerida")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, domain.Invalid("product_id", "producto requerido")
	}
	return uc.stockRepo.ListAvailable(ctx, warehouseID, productID)
}

// ReceiveInput entrada de mercancía a una bodega (queda pendiente de ubicar).
type ReceiveInput struct {
	UserID      string
	WarehouseID string
	ProductID   string
	Quantity    int64
	Reference   string // documento del proveedor u orden de compra
	UnitCost    *decimal.Decimal
}

// Receive registra un INBOUND y suma al contador del producto en una sola transacción.
// El stock físico no cambia hasta el PutAway.
func (uc *StockUseCase) Receive(ctx context.Context, input ReceiveInput) (*entity.Movement, error) {
	m, err := uc.receive(ctx, input)
	if err != nil {
		uc.metrics.Failed(opReceive, failureReason(err))
		return nil, err
	}
	uc.metrics.Committed(opReceive)
	uc.log.Info().Str("warehouse", input.WarehouseID).Str("product", input.ProductID).Int64("qty", input.Quantity).Msg("entrada registrada")
	return m, nil
}

func (uc *StockUseCase) receive(ctx context.Context, input ReceiveInput) (*entity.Movement, error) {
	if strings.TrimSpace(input.WarehouseID) == "" {
		return nil, domain.Invalid("warehouse_id", "bodega requerida")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, domain.Invalid("product_id", "producto requerido")
	}
	if input.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "la cantidad debe ser mayor a cero")
	}
	if strings.TrimSpace(input.Reference) == "" {
		return nil, domain.Invalid("reference", "documento de referencia requerido")
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "costo negativo")
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

	var m *entity.Movement
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		product, err := repos.Products.GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		unitCost := product.Cost
		if input.UnitCost != nil {
			unitCost = *input.UnitCost
		}
		m = &entity.Movement{
			ID:          uuid.New().String(),
			Type:        entity.MovementInbound,
			WarehouseID: input.WarehouseID,
			ProductID:   input.ProductID,
			Quantity:    input.Quantity,
			Folio:       input.Reference,
			UnitCost:    unitCost,
			TotalCost:   unitCost.Mul(decimal.NewFromInt(input.Quantity)),
			CreatedAt:   uc.now(),
			CreatedBy:   input.UserID,
		}
		if err := repos.Movements.Append(ctx, m); err != nil {
			return err
		}
		return repos.Products.AdjustStockCounter(ctx, input.ProductID, input.Quantity)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, []ChangeEvent{{
		Kind: LedgerAppended, WarehouseID: m.WarehouseID, ProductID: m.ProductID,
		Delta: m.Quantity, Folio: m.Folio, At: m.CreatedAt,
	}})
	return m, nil
}

// AdjustInput ajuste directo de una fila de ubicación.
type AdjustInput struct {
	WarehouseID string
	ProductID   string
	LocationID  string
	Delta       int64
}

// AdjustQuantity aplica delta a la ubicación dentro de una transacción y devuelve la nueva cantidad.
// Un delta positivo no puede superar lo pendiente por ubicar de la llave (el físico nunca supera al contable);
// un delta negativo que deje la fila bajo cero falla con *domain.NegativeStockError.
func (uc *StockUseCase) AdjustQuantity(ctx context.Context, input AdjustInput) (int64, error) {
	qty, err := uc.adjust(ctx, input)
	if err != nil {
		uc.metrics.Failed(opAdjust, failureReason(err))
		return 0, err
	}
	uc.metrics.Committed(opAdjust)
	return qty, nil
}

func (uc *StockUseCase) adjust(ctx context.Context, input AdjustInput) (int64, error) {
	if strings.TrimSpace(input.WarehouseID) == "" {
		return 0, domain.Invalid("warehouse_id", "bodega requerida")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return 0, domain.Invalid("product_id", "producto requerido")
	}
	if strings.TrimSpace(input.LocationID) == "" {
		return 0, domain.Invalid("location_id", "ubicación requerida")
	}
	if input.Delta == 0 {
		return 0, domain.Invalid("delta", "el ajuste no puede ser cero")
	}
	loc, err := uc.warehouses.GetLocation(ctx, input.LocationID)
	if err != nil {
		return 0, err
	}
	if loc == nil {
		return 0, domain.ErrNotFound
	}
	if loc.WarehouseID != input.WarehouseID {
		return 0, domain.Invalid("location_id", "la ubicación no pertenece a la bodega")
	}

	key := domaininv.Key{WarehouseID: input.WarehouseID, ProductID: input.ProductID}
	release := uc.gate.Hold()
	defer release()

	var newQty int64
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		if input.Delta > 0 {
			if err := repos.Stock.LockKey(ctx, key); err != nil {
				return err
			}
			accounting, err := repos.Movements.AccountingTotal(ctx, key)
			if err != nil {
				return err
			}
			physical, err := repos.Stock.PhysicalTotal(ctx, key)
			if err != nil {
				return err
			}
			if input.Delta > accounting-physical {
				return domain.ErrExceedsPending
			}
		}
		q, err := repos.Stock.Adjust(ctx, input.WarehouseID, input.ProductID, input.LocationID, input.Delta)
		if err != nil {
			return err
		}
		newQty = q
		return nil
	})
	if err != nil {
		return 0, err
	}
	uc.publish(ctx, []ChangeEvent{{
		Kind: StockChanged, WarehouseID: input.WarehouseID, ProductID: input.ProductID,
		Delta: input.Delta, At: uc.now(),
	}})
	return newQty, nil
}

// PutAwayInput ubicación de mercancía recibida (INBOUND o TRANSFER_IN) en un estante.
type PutAwayInput struct {
	WarehouseID string
	ProductID   string
	LocationID  string
	Quantity    int64
}

// PutAway segunda fase de la recepción: incrementa LocationStock hasta cubrir lo pendiente.
// La pertenencia de la ubicación a la bodega se valida en AdjustQuantity.
func (uc *StockUseCase) PutAway(ctx context.Context, input PutAwayInput) (int64, error) {
	if input.Quantity <= 0 {
		return 0, domain.Invalid("quantity", "la cantidad debe ser mayor a cero")
	}
	return uc.AdjustQuantity(ctx, AdjustInput{
		WarehouseID: input.WarehouseID,
		ProductID:   input.ProductID,
		LocationID:  input.LocationID,
		Delta:       input.Quantity,
	})
}
