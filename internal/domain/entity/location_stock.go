package entity

import "time"

// LocationStock cantidad física de un producto en una ubicación de una bodega.
// Nunca se persiste con Quantity <= 0: al vaciarse la fila se elimina.
type LocationStock struct {
	ID           string
	WarehouseID  string
	ProductID    string
	LocationID   string
	LocationCode string
	Quantity     int64
	UpdatedAt    time.Time
}

// DistributionLine asignación de cantidad a tomar de una ubicación (efímera, solo forma parte de la petición).
type DistributionLine struct {
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"`
}
