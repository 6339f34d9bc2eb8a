package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger.
type MovementType string

// Tipos de movimiento. Entradas suman al saldo contable, salidas restan.
const (
	MovementInbound     MovementType = "INBOUND"
	MovementOutbound    MovementType = "OUTBOUND"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementTransferOut MovementType = "TRANSFER_OUT"
)

// Valid indica si el tipo pertenece al catálogo.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInbound, MovementOutbound, MovementTransferIn, MovementTransferOut:
		return true
	}
	return false
}

// Sign +1 para INBOUND/TRANSFER_IN, -1 para OUTBOUND/TRANSFER_OUT.
func (t MovementType) Sign() int64 {
	if t == MovementInbound || t == MovementTransferIn {
		return 1
	}
	return -1
}

// Movement registro inmutable del ledger. Una vez creado no se actualiza ni se elimina.
type Movement struct {
	ID                 string
	Seq                int64 // orden de inserción, asignado por el almacenamiento
	Type               MovementType
	WarehouseID        string
	ProductID          string
	Quantity           int64 // siempre > 0; el signo lo da Type
	Folio              string
	SourceLocationID   string
	Authorizer         string
	OriginProject      string
	DestinationProject string
	DispatchMode       DispatchMode
	UnitCost           decimal.Decimal
	TotalCost          decimal.Decimal
	CreatedAt          time.Time
	CreatedBy          string
}

// Delta cantidad con signo que el movimiento aporta al saldo contable.
func (m *Movement) Delta() int64 {
	return m.Type.Sign() * m.Quantity
}
