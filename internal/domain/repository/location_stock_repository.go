package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// LocationStockRepository puerto del almacén de stock por ubicación. Es la única vía
// para leer o escribir cantidades físicas. Usado dentro de transacciones para garantizar consistencia.
type LocationStockRepository interface {
	// ListAvailable filas con cantidad > 0 para bodega+producto, ordenadas por código de ubicación.
	ListAvailable(ctx context.Context, warehouseID, productID string) ([]*entity.LocationStock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil si no existe.
	GetForUpdate(ctx context.Context, warehouseID, productID, locationID string) (*entity.LocationStock, error)
	// Adjust aplica delta en una sola sentencia restringida a quedar >= 0 y devuelve la nueva cantidad.
	// Falla con *domain.NegativeStockError; si la cantidad queda en 0 la fila se elimina.
	Adjust(ctx context.Context, warehouseID, productID, locationID string, delta int64) (int64, error)
	// LockKey serializa operaciones sobre la misma bodega+producto hasta el fin de la transacción.
	LockKey(ctx context.Context, key inventory.Key) error
	PhysicalTotal(ctx context.Context, key inventory.Key) (int64, error)
	PhysicalTotals(ctx context.Context) (map[inventory.Key]int64, error)
}
