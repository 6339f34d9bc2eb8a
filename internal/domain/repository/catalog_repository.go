package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository consulta de bodegas y ubicaciones (datos maestros, solo lectura desde el núcleo).
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	GetLocation(ctx context.Context, id string) (*entity.Location, error)
}

// ProductRepository consulta de productos y mantenimiento del contador desnormalizado.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// AdjustStockCounter suma delta al contador de existencias del producto.
	AdjustStockCounter(ctx context.Context, productID string, delta int64) error
}
