package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Location ubicación física (estante, rack, piso) dentro de una bodega.
type Location struct {
	ID          string
	WarehouseID string
	Code        string // código legible, único por bodega
}
