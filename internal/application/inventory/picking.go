package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// checkAvailability valida una distribución contra el stock disponible antes de cualquier mutación:
// cada ubicación debe tener la cantidad pedida (acumulando líneas repetidas) y el total no puede exceder la suma.
func checkAvailability(productID string, available []*entity.LocationStock, lines []entity.DistributionLine) error {
	if len(available) == 0 {
		return domain.ErrNoStock
	}
	byLocation := make(map[string]int64, len(available))
	var total int64
	for _, row := range available {
		byLocation[row.LocationID] += row.Quantity
		total += row.Quantity
	}

	requested := make(map[string]int64, len(lines))
	var requestedTotal int64
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		requested[l.LocationID] += l.Quantity
		requestedTotal += l.Quantity
	}
	if requestedTotal > total {
		return &domain.InsufficientStockError{ProductID: productID, Requested: requestedTotal, Available: total}
	}
	for _, l := range lines {
		if q, ok := requested[l.LocationID]; ok && q > byLocation[l.LocationID] {
			return &domain.InsufficientStockError{
				ProductID:  productID,
				LocationID: l.LocationID,
				Requested:  q,
				Available:  byLocation[l.LocationID],
			}
		}
	}
	return nil
}

// takeFromLocation bloquea la fila de la ubicación, verifica existencia suficiente y la decrementa.
// Debe ejecutarse dentro de TxRunner.Run.
func takeFromLocation(ctx context.Context, repos TxRepos, warehouseID, productID, locationID string, qty int64) error {
	row, err := repos.Stock.GetForUpdate(ctx, warehouseID, productID, locationID)
	if err != nil {
		return err
	}
	var current int64
	if row != nil {
		current = row.Quantity
	}
	if current < qty {
		return &domain.InsufficientStockError{ProductID: productID, LocationID: locationID, Requested: qty, Available: current}
	}
	if _, err := repos.Stock.Adjust(ctx, warehouseID, productID, locationID, -qty); err != nil {
		var neg *domain.NegativeStockError
		if errors.As(err, &neg) {
			return &domain.InsufficientStockError{ProductID: productID, LocationID: locationID, Requested: qty, Available: neg.Current}
		}
		return err
	}
	return nil
}
