package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDTO movimiento del ledger.
type MovementDTO struct {
	ID                 string          `json:"id"`
	Seq                int64           `json:"seq"`
	Type               string          `json:"type"`
	WarehouseID        string          `json:"warehouse_id"`
	ProductID          string          `json:"product_id"`
	Quantity           int64           `json:"quantity"`
	Folio              string          `json:"folio,omitempty"`
	SourceLocationID   string          `json:"source_location_id,omitempty"`
	Authorizer         string          `json:"authorizer,omitempty"`
	OriginProject      string          `json:"origin_project,omitempty"`
	DestinationProject string          `json:"destination_project,omitempty"`
	DispatchMode       string          `json:"dispatch_mode,omitempty"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	CreatedAt          time.Time       `json:"created_at"`
	CreatedBy          string          `json:"created_by,omitempty"`
}
