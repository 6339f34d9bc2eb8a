package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// MovementRepository puerto del ledger de movimientos. Append es la única escritura:
// no existen Update ni Delete.
type MovementRepository interface {
	// Append asigna ID y Seq al movimiento; solo son válidos después del commit.
	Append(ctx context.Context, movement *entity.Movement) error
	// ListByFolio movimientos de un folio en orden de inserción.
	ListByFolio(ctx context.Context, folio string) ([]*entity.Movement, error)
	AccountingTotal(ctx context.Context, key inventory.Key) (int64, error)
	AccountingTotals(ctx context.Context) (map[inventory.Key]int64, error)
}
