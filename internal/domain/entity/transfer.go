package entity

import "time"

// Transfer encabezado de un traslado entre bodegas. Se crea una vez y es inmutable;
// sus líneas son los movimientos TRANSFER_OUT/TRANSFER_IN con el mismo folio.
type Transfer struct {
	ID                     string
	Folio                  string
	OriginWarehouseID      string
	DestinationWarehouseID string
	OriginProject          string
	DestinationProject     string
	Authorizer             string
	CreatedAt              time.Time
	CreatedBy              string
}
