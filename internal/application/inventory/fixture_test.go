package inventory_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: W1 (L1 "A-01", L2 "A-02"), W2 (M1 "B-01"), producto P costo 10.
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	recon    *inventory.ReconciliationService
	metrics  *fakeMetrics
	stock    *inventory.StockUseCase
	transfer *inventory.TransferUseCase
	dispatch *inventory.DispatchUseCase
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	store := memory.NewStore()
	store.AddWarehouse(entity.Warehouse{ID: "W1", Name: "Central"})
	store.AddWarehouse(entity.Warehouse{ID: "W2", Name: "Obra"})
	store.AddLocation(entity.Location{ID: "L1", WarehouseID: "W1", Code: "A-01"})
	store.AddLocation(entity.Location{ID: "L2", WarehouseID: "W1", Code: "A-02"})
	store.AddLocation(entity.Location{ID: "M1", WarehouseID: "W2", Code: "B-01"})
	store.AddProduct(entity.Product{ID: "P", Code: "VAR-12", Name: "Varilla 1/2", Cost: decimal.NewFromInt(10)})

	var runner inventory.TxRunner = store
	if cfg.wrap != nil {
		runner = cfg.wrap(store)
	}

	repos := store.Repos()
	dispatches := repos.Dispatches
	if cfg.dispatches != nil {
		dispatches = cfg.dispatches(dispatches)
	}
	recon := inventory.NewReconciliationService(repos.Movements, repos.Stock, zerolog.Nop())
	metrics := &fakeMetrics{}
	var publisher inventory.EventPublisher = recon
	if cfg.publisher != nil {
		publisher = cfg.publisher(recon)
	}
	common := []inventory.Option{inventory.WithPublisher(publisher), inventory.WithCommitGate(recon), inventory.WithMetrics(metrics)}

	return &fixture{
		store:    store,
		recon:    recon,
		metrics:  metrics,
		stock:    inventory.NewStockUseCase(store, repos.Stock, store.Warehouses(), common...),
		transfer: inventory.NewTransferUseCase(runner, repos.Stock, repos.Movements, repos.Transfers, store.Warehouses(), common...),
		dispatch: inventory.NewDispatchUseCase(runner, repos.Stock, repos.Movements, dispatches, store.Warehouses(), cfg.storage, common...),
	}
}

type fixtureConfig struct {
	wrap       func(*memory.Store) inventory.TxRunner
	storage    inventory.ProofStorage
	dispatches func(repository.DispatchRepository) repository.DispatchRepository
	publisher  func(*inventory.ReconciliationService) inventory.EventPublisher
}

type fixtureOption func(*fixtureConfig)

func withDispatchRepo(wrap func(repository.DispatchRepository) repository.DispatchRepository) fixtureOption {
	return func(c *fixtureConfig) { c.dispatches = wrap }
}

func withRunner(wrap func(*memory.Store) inventory.TxRunner) fixtureOption {
	return func(c *fixtureConfig) { c.wrap = wrap }
}

func withPublisher(wrap func(*inventory.ReconciliationService) inventory.EventPublisher) fixtureOption {
	return func(c *fixtureConfig) { c.publisher = wrap }
}

func withStorage(s inventory.ProofStorage) fixtureOption {
	return func(c *fixtureConfig) { c.storage = s }
}

// seed recibe y ubica cantidades en W1 (entrada + put-away), dejando el saldo reconciliado.
func (f *fixture) seed(t *testing.T, byLocation map[string]int64) {
	t.Helper()
	ctx := context.Background()
	var total int64
	for _, q := range byLocation {
		total += q
	}
	_, err := f.stock.Receive(ctx, inventory.ReceiveInput{WarehouseID: "W1", ProductID: "P", Quantity: total, Reference: "OC-1"})
	require.NoError(t, err)
	for loc, q := range byLocation {
		_, err := f.stock.PutAway(ctx, inventory.PutAwayInput{WarehouseID: "W1", ProductID: "P", LocationID: loc, Quantity: q})
		require.NoError(t, err)
	}
}

// qty cantidad física actual de una ubicación (0 si la fila no existe).
func (f *fixture) qty(warehouseID, locationID string) int64 {
	for _, row := range f.store.Snapshot() {
		if row.WarehouseID == warehouseID && row.LocationID == locationID && row.ProductID == "P" {
			return row.Quantity
		}
	}
	return 0
}

func (f *fixture) productCounter(t *testing.T) int64 {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), "P")
	require.NoError(t, err)
	return p.StockCounter
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeMetrics struct {
	mu        sync.Mutex
	committed map[string]int
	failed    map[string]int
}

func (m *fakeMetrics) Committed(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.committed == nil {
		m.committed = map[string]int{}
	}
	m.committed[op]++
}

func (m *fakeMetrics) Failed(op, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed == nil {
		m.failed = map[string]int{}
	}
	m.failed[op+"/"+reason]++
}

func (m *fakeMetrics) failures(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[key]
}

func (m *fakeMetrics) commits(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed[op]
}

// hookedRunner deja que el test altere los repositorios de la transacción.
type hookedRunner struct {
	inner inventory.TxRunner
	hook  func(attempt int, repos inventory.TxRepos) inventory.TxRepos
	calls int
}

func (r *hookedRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	r.calls++
	attempt := r.calls
	return r.inner.Run(ctx, func(repos inventory.TxRepos) error {
		return fn(r.hook(attempt, repos))
	})
}

var errBoom = errors.New("fallo de escritura simulado")

// failingMovements falla el Append número failAt (1-based) dentro de la transacción.
type failingMovements struct {
	repository.MovementRepository
	failAt int
	n      int
}

func (f *failingMovements) Append(ctx context.Context, m *entity.Movement) error {
	f.n++
	if f.n == f.failAt {
		return errBoom
	}
	return f.MovementRepository.Append(ctx, m)
}

// failingProofs falla al registrar la evidencia.
type failingProofs struct {
	repository.DispatchRepository
}

func (failingProofs) AttachProof(context.Context, *entity.DispatchProof) error { return errBoom }

type fakeStorage struct {
	uploaded map[string][]byte
	err      error
}

func (s *fakeStorage) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.uploaded == nil {
		s.uploaded = map[string][]byte{}
	}
	s.uploaded[objectName] = b
	return "https://storage.example/" + objectName, nil
}
