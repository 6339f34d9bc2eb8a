// Package memory implementa los puertos de almacenamiento en memoria con transacciones
// copy-on-write serializadas por un mutex. Se usa en tests y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct {
	warehouseID string
	productID   string
	locationID  string
}

type state struct {
	warehouses map[string]*entity.Warehouse
	locations  map[string]*entity.Location
	products   map[string]*entity.Product
	stock      map[stockKey]*entity.LocationStock
	movements  []*entity.Movement
	transfers  map[string]*entity.Transfer
	dispatches map[string]*entity.DispatchDocument
	proofs     map[string]*entity.DispatchProof
	nextSeq    int64
}

func newState() *state {
	return &state{
		warehouses: make(map[string]*entity.Warehouse),
		locations:  make(map[string]*entity.Location),
		products:   make(map[string]*entity.Product),
		stock:      make(map[stockKey]*entity.LocationStock),
		transfers:  make(map[string]*entity.Transfer),
		dispatches: make(map[string]*entity.DispatchDocument),
		proofs:     make(map[string]*entity.DispatchProof),
	}
}

// clone copia el estado. Filas de stock y productos se copian por valor porque se modifican;
// movimientos y encabezados son inmutables y se comparten.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.stock {
		row := *v
		c.stock[k] = &row
	}
	c.movements = append(make([]*entity.Movement, 0, len(s.movements)+8), s.movements...)
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.dispatches {
		c.dispatches[k] = v
	}
	for k, v := range s.proofs {
		c.proofs[k] = v
	}
	c.nextSeq = s.nextSeq
	return c
}

// Store almacenamiento en memoria. Run serializa las transacciones y aplica el estado
// de trabajo solo si fn termina sin error.
type Store struct {
	mu        sync.Mutex
	st        *state
	sequences map[string]int64
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState(), sequences: make(map[string]int64)}
}

// Run ejecuta fn con repositorios atados a una copia del estado; Commit al terminar sin error.
// Las secuencias de folio no se revierten, igual que nextval en PostgreSQL.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	var committed []func()
	if err := fn(s.repos(view{store: s, st: work, committed: &committed})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	for _, apply := range committed {
		apply()
	}
	return nil
}

// Repos repositorios fuera de transacción: cada llamada toma el lock y opera sobre el estado confirmado.
func (s *Store) Repos() inventory.TxRepos {
	return s.repos(view{store: s})
}

func (s *Store) repos(v view) inventory.TxRepos {
	return inventory.TxRepos{
		Stock:      &StockRepo{v: v},
		Movements:  &MovementRepo{v: v},
		Transfers:  &TransferRepo{v: v},
		Dispatches: &DispatchRepo{v: v},
		Products:   &ProductRepo{v: v},
		Folios:     &FolioSequence{v: v},
	}
}

// Warehouses repositorio de bodegas y ubicaciones.
func (s *Store) Warehouses() *WarehouseRepo {
	return &WarehouseRepo{v: view{store: s}}
}

// view resuelve sobre qué estado opera un repositorio.
type view struct {
	store *Store
	st    *state // no nil dentro de una transacción (el lock ya está tomado)
	// committed acciones diferidas hasta el commit de la transacción.
	committed *[]func()
}

// afterCommit ejecuta fn al confirmar la transacción, o de inmediato fuera de ella.
func (v view) afterCommit(fn func()) {
	if v.committed == nil {
		fn()
		return
	}
	*v.committed = append(*v.committed, fn)
}

func (v view) read(fn func(st *state)) {
	if v.st != nil {
		fn(v.st)
		return
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	fn(v.store.st)
}

func (v view) write(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

// AddWarehouse registra una bodega (datos maestros).
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.warehouses[w.ID] = &w
}

// AddLocation registra una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.locations[l.ID] = &l
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = &p
}

// Snapshot copia de las filas de stock ordenadas por bodega, producto y ubicación (tests, diagnósticos).
func (s *Store) Snapshot() []entity.LocationStock {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.LocationStock, 0, len(s.st.stock))
	for _, row := range s.st.stock {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.LocationID < b.LocationID
	})
	return out
}

// Movements copia del ledger en orden de inserción.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, 0, len(s.st.movements))
	for _, m := range s.st.movements {
		out = append(out, *m)
	}
	return out
}
