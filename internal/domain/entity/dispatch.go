package entity

import "time"

// DispatchMode destino de una salida.
type DispatchMode string

// Modos de salida: a proyecto propio, a subcontratista o a un tercero externo.
const (
	DispatchDirect      DispatchMode = "DIRECT"
	DispatchSubcontract DispatchMode = "SUBCONTRACT"
	DispatchExternal    DispatchMode = "EXTERNAL"
)

// Receiver persona que recibe físicamente la mercancía.
type Receiver struct {
	Name     string
	IDNumber string
	Stage    string
}

// DispatchDocument encabezado de una salida de almacén. Sus líneas son movimientos OUTBOUND con el mismo folio.
type DispatchDocument struct {
	ID              string
	Folio           string
	WarehouseID     string
	Mode            DispatchMode
	ProjectID       string
	SubcontractorID string
	ExternalCompany string
	Reason          string
	Receiver        Receiver
	CreatedAt       time.Time
	CreatedBy       string
}

// DispatchProof evidencia firmada de entrega asociada a todos los movimientos del folio.
type DispatchProof struct {
	Folio      string
	ObjectURL  string
	UploadedAt time.Time
	UploadedBy string
}
