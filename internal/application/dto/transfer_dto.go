package dto

import "time"

// DistributionLineRequest cantidad a tomar de una ubicación de origen.
type DistributionLineRequest struct {
	LocationID string `json:"location_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"gte=0"`
}

// TransferItemRequest producto del carrito y su reparto por ubicación.
type TransferItemRequest struct {
	ProductID    string                    `json:"product_id" validate:"required"`
	Distribution []DistributionLineRequest `json:"distribution" validate:"required,min=1,dive"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	OriginWarehouseID      string                `json:"origin_warehouse_id" validate:"required"`
	DestinationWarehouseID string                `json:"destination_warehouse_id" validate:"required,nefield=OriginWarehouseID"`
	OriginProject          string                `json:"origin_project"`
	DestinationProject     string                `json:"destination_project"`
	Authorizer             string                `json:"authorizer" validate:"required"`
	Items                  []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferResponse traslado confirmado.
type TransferResponse struct {
	ID                     string        `json:"id"`
	Folio                  string        `json:"folio"`
	OriginWarehouseID      string        `json:"origin_warehouse_id"`
	DestinationWarehouseID string        `json:"destination_warehouse_id"`
	OriginProject          string        `json:"origin_project,omitempty"`
	DestinationProject     string        `json:"destination_project,omitempty"`
	Authorizer             string        `json:"authorizer"`
	CreatedAt              time.Time     `json:"created_at"`
	Movements              []MovementDTO `json:"movements"`
}

// ManifestLineDTO línea del manifiesto de traslado.
type ManifestLineDTO struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"`
}

// TransferManifestResponse respuesta de GET /api/transfers/:folio.
type TransferManifestResponse struct {
	Folio                  string            `json:"folio"`
	OriginWarehouseID      string            `json:"origin_warehouse_id"`
	DestinationWarehouseID string            `json:"destination_warehouse_id"`
	Authorizer             string            `json:"authorizer"`
	CreatedAt              time.Time         `json:"created_at"`
	Lines                  []ManifestLineDTO `json:"lines"`
}
