package dto

import "time"

// ReceiverDTO persona que recibe la mercancía.
type ReceiverDTO struct {
	Name     string `json:"name" validate:"required"`
	IDNumber string `json:"id_number" validate:"required"`
	Stage    string `json:"stage"`
}

// DispatchLineRequest línea del carrito ligada a una ubicación.
type DispatchLineRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateDispatchRequest body para POST /api/dispatches.
type CreateDispatchRequest struct {
	WarehouseID     string                `json:"warehouse_id" validate:"required"`
	Mode            string                `json:"mode" validate:"required,oneof=DIRECT SUBCONTRACT EXTERNAL"`
	ProjectID       string                `json:"project_id" validate:"required_if=Mode DIRECT,required_if=Mode SUBCONTRACT"`
	SubcontractorID string                `json:"subcontractor_id" validate:"required_if=Mode SUBCONTRACT"`
	ExternalCompany string                `json:"external_company" validate:"required_if=Mode EXTERNAL"`
	Reason          string                `json:"reason"`
	Receiver        ReceiverDTO           `json:"receiver"`
	Lines           []DispatchLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PickRequest body para POST /api/dispatches/pick.
type PickRequest struct {
	WarehouseID string                    `json:"warehouse_id" validate:"required"`
	ProductID   string                    `json:"product_id" validate:"required"`
	Allocations []DistributionLineRequest `json:"allocations" validate:"required,min=1,dive"`
}

// PickResponse líneas de carrito resultantes.
type PickResponse struct {
	Lines []DispatchLineRequest `json:"lines"`
}

// DispatchProofDTO evidencia de entrega.
type DispatchProofDTO struct {
	ObjectURL  string    `json:"object_url"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
}

// DispatchResponse salida confirmada o consultada.
type DispatchResponse struct {
	ID              string            `json:"id"`
	Folio           string            `json:"folio"`
	WarehouseID     string            `json:"warehouse_id"`
	Mode            string            `json:"mode"`
	ProjectID       string            `json:"project_id,omitempty"`
	SubcontractorID string            `json:"subcontractor_id,omitempty"`
	ExternalCompany string            `json:"external_company,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Receiver        ReceiverDTO       `json:"receiver"`
	CreatedAt       time.Time         `json:"created_at"`
	Movements       []MovementDTO     `json:"movements"`
	Proof           *DispatchProofDTO `json:"proof,omitempty"`
}
