package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Summary estado agregado que reciben los suscriptores (badges, métricas).
type Summary struct {
	PendingKeys int
	AnomalyKeys int
	TrackedKeys int
}

// ReconciliationService única superficie de consulta de la diferencia contable vs físico.
// Se alimenta de los eventos del bus (incremental) y puede reconstruirse con Recompute (barrido completo).
type ReconciliationService struct {
	movements repository.MovementRepository
	stock     repository.LocationStockRepository
	engine    *domaininv.Reconciler
	log       zerolog.Logger

	// commits: lectura por cada commit en curso, escritura durante el barrido completo.
	commits sync.RWMutex

	mu          sync.Mutex
	subscribers []func(Summary)
}

var (
	_ EventPublisher = (*ReconciliationService)(nil)
	_ CommitGate     = (*ReconciliationService)(nil)
)

// NewReconciliationService construye el servicio con un motor vacío; llamar Recompute al iniciar.
func NewReconciliationService(movements repository.MovementRepository, stock repository.LocationStockRepository, log zerolog.Logger) *ReconciliationService {
	return &ReconciliationService{
		movements: movements,
		stock:     stock,
		engine:    domaininv.NewReconciler(),
		log:       log,
	}
}

// Recompute barrido completo del ledger y de las ubicaciones.
// Espera a que terminen los commits en curso (commit y publicación) y bloquea los nuevos
// hasta reconstruir el motor, así ningún evento se aplica dos veces.
func (s *ReconciliationService) Recompute(ctx context.Context) (Summary, error) {
	if err := s.rebuild(ctx); err != nil {
		return Summary{}, err
	}
	sum := s.notify()
	s.log.Debug().Int("pending", sum.PendingKeys).Int("anomalies", sum.AnomalyKeys).Msg("reconciliación recalculada")
	return sum, nil
}

func (s *ReconciliationService) rebuild(ctx context.Context) error {
	s.commits.Lock()
	defer s.commits.Unlock()

	accounting, err := s.movements.AccountingTotals(ctx)
	if err != nil {
		return fmt.Errorf("totales contables: %w", err)
	}
	physical, err := s.stock.PhysicalTotals(ctx)
	if err != nil {
		return fmt.Errorf("totales físicos: %w", err)
	}
	s.engine.Rebuild(accounting, physical)
	return nil
}

// Hold implementa CommitGate. No llamar Recompute mientras se sostiene.
func (s *ReconciliationService) Hold() func() {
	s.commits.RLock()
	return s.commits.RUnlock
}

// Publish implementa EventPublisher: aplica cada evento al motor y notifica a los suscriptores.
func (s *ReconciliationService) Publish(_ context.Context, events ...ChangeEvent) error {
	for _, e := range events {
		switch e.Kind {
		case LedgerAppended:
			s.engine.ApplyLedger(e.Key(), e.Delta)
		case StockChanged:
			s.engine.ApplyPhysical(e.Key(), e.Delta)
		}
	}
	if len(events) > 0 {
		s.notify()
	}
	return nil
}

// Subscribe registra un observador del conteo de pendientes. Recibe el estado actual de inmediato.
func (s *ReconciliationService) Subscribe(fn func(Summary)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
	fn(s.Summary())
}

// Summary estado agregado actual.
func (s *ReconciliationService) Summary() Summary {
	return Summary{
		PendingKeys: s.engine.PendingCount(),
		AnomalyKeys: len(s.engine.Anomalies()),
		TrackedKeys: len(s.engine.Balances()),
	}
}

// PendingCount número de llaves (bodega, producto) con mercancía pendiente por ubicar.
func (s *ReconciliationService) PendingCount() int {
	return s.engine.PendingCount()
}

// Balance saldo de una llave.
func (s *ReconciliationService) Balance(key domaininv.Key) domaininv.Balance {
	return s.engine.Balance(key)
}

// Report todas las llaves con su saldo contable, físico y pendiente.
func (s *ReconciliationService) Report() []domaininv.Balance {
	return s.engine.Balances()
}

// Pending solo las llaves con brecha positiva.
func (s *ReconciliationService) Pending() []domaininv.Balance {
	return s.engine.Pending()
}

func (s *ReconciliationService) notify() Summary {
	sum := s.Summary()
	s.mu.Lock()
	subs := make([]func(Summary), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(sum)
	}
	if sum.AnomalyKeys > 0 {
		s.log.Error().Int("anomalies", sum.AnomalyKeys).Msg("stock físico supera al contable")
	}
	return sum
}
