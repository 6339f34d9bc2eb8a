package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationStockDTO fila de disponibilidad por ubicación.
type LocationStockDTO struct {
	LocationID   string    `json:"location_id"`
	LocationCode string    `json:"location_code"`
	Quantity     int64     `json:"quantity"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AvailabilityResponse respuesta de GET /api/stock/available.
type AvailabilityResponse struct {
	WarehouseID string             `json:"warehouse_id"`
	ProductID   string             `json:"product_id"`
	Total       int64              `json:"total"`
	Locations   []LocationStockDTO `json:"locations"`
}

// ReceiveRequest body para POST /api/stock/receipts.
type ReceiveRequest struct {
	WarehouseID string           `json:"warehouse_id" validate:"required"`
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    int64            `json:"quantity" validate:"required,gt=0"`
	Reference   string           `json:"reference" validate:"required,max=100"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// PutAwayRequest body para POST /api/stock/put-away.
type PutAwayRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	ProductID   string `json:"product_id" validate:"required"`
	LocationID  string `json:"location_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
}

// AdjustRequest body para POST /api/stock/adjustments.
type AdjustRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	ProductID   string `json:"product_id" validate:"required"`
	LocationID  string `json:"location_id" validate:"required"`
	Delta       int64  `json:"delta" validate:"required"`
}

// QuantityResponse cantidad resultante de una ubicación.
type QuantityResponse struct {
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"`
}
