package inventory

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Stock      repository.LocationStockRepository
	Movements  repository.MovementRepository
	Transfers  repository.TransferRepository
	Dispatches repository.DispatchRepository
	Products   repository.ProductRepository
	Folios     repository.FolioSequence
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no se aplica nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// ChangeKind tipo de notificación de cambio.
type ChangeKind string

const (
	LedgerAppended ChangeKind = "ledger_appended"
	StockChanged   ChangeKind = "stock_changed"
)

// ChangeEvent notificación emitida después del commit por cada escritura en ledger o en ubicaciones.
type ChangeEvent struct {
	Kind        ChangeKind `json:"kind"`
	WarehouseID string     `json:"warehouse_id"`
	ProductID   string     `json:"product_id"`
	Delta       int64      `json:"delta"`
	Folio       string     `json:"folio,omitempty"`
	At          time.Time  `json:"at"`
}

// Key llave de reconciliación del evento.
func (e ChangeEvent) Key() inventory.Key {
	return inventory.Key{WarehouseID: e.WarehouseID, ProductID: e.ProductID}
}

// EventPublisher bus de notificaciones (colaborador externo).
type EventPublisher interface {
	Publish(ctx context.Context, events ...ChangeEvent) error
}

// ProofStorage almacenamiento de evidencias firmadas de entrega. Devuelve la URL del objeto.
type ProofStorage interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// MetricsRecorder contadores de operaciones del orquestador.
type MetricsRecorder interface {
	Committed(operation string)
	Failed(operation, reason string)
}

type nopMetrics struct{}

func (nopMetrics) Committed(string)      {}
func (nopMetrics) Failed(string, string) {}

// CommitGate ordena los commits del proceso contra un barrido completo de reconciliación.
// Hold se toma antes de la transacción y se libera después de publicar sus eventos.
type CommitGate interface {
	Hold() (release func())
}

type nopGate struct{}

func (nopGate) Hold() func() { return func() {} }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...ChangeEvent) error { return nil }
