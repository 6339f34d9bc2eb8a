package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// StockCounter es un contador desnormalizado del total en existencia: secundario, no autoritativo.
// La fuente de verdad es el ledger (contable) y LocationStock (físico).
type Product struct {
	ID           string
	Code         string
	Name         string
	Cost         decimal.Decimal // costo unitario usado para valorizar movimientos
	StockCounter int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
