package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.LocationStockRepository = (*StockRepo)(nil)
	_ repository.MovementRepository      = (*MovementRepo)(nil)
	_ repository.TransferRepository      = (*TransferRepo)(nil)
	_ repository.DispatchRepository      = (*DispatchRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.WarehouseRepository     = (*WarehouseRepo)(nil)
	_ repository.FolioSequence           = (*FolioSequence)(nil)
)

// StockRepo stock por ubicación en memoria.
type StockRepo struct{ v view }

// ListAvailable filas con cantidad > 0 ordenadas por código de ubicación.
func (r *StockRepo) ListAvailable(_ context.Context, warehouseID, productID string) ([]*entity.LocationStock, error) {
	var out []*entity.LocationStock
	r.v.read(func(st *state) {
		for k, row := range st.stock {
			if k.warehouseID == warehouseID && k.productID == productID && row.Quantity > 0 {
				c := *row
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationCode != out[j].LocationCode {
			return out[i].LocationCode < out[j].LocationCode
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out, nil
}

// GetForUpdate en memoria el lock de la transacción ya serializa el acceso.
func (r *StockRepo) GetForUpdate(_ context.Context, warehouseID, productID, locationID string) (*entity.LocationStock, error) {
	var out *entity.LocationStock
	r.v.read(func(st *state) {
		if row, ok := st.stock[stockKey{warehouseID, productID, locationID}]; ok {
			c := *row
			out = &c
		}
	})
	return out, nil
}

// Adjust aplica delta; elimina la fila al llegar a cero.
func (r *StockRepo) Adjust(_ context.Context, warehouseID, productID, locationID string, delta int64) (int64, error) {
	var newQty int64
	err := r.v.write(func(st *state) error {
		k := stockKey{warehouseID, productID, locationID}
		row := st.stock[k]
		var current int64
		if row != nil {
			current = row.Quantity
		}
		next := current + delta
		if next < 0 {
			return &domain.NegativeStockError{
				WarehouseID: warehouseID, ProductID: productID, LocationID: locationID,
				Current: current, Delta: delta,
			}
		}
		newQty = next
		if next == 0 {
			delete(st.stock, k)
			return nil
		}
		if row == nil {
			row = &entity.LocationStock{
				ID:          uuid.New().String(),
				WarehouseID: warehouseID,
				ProductID:   productID,
				LocationID:  locationID,
			}
			if loc, ok := st.locations[locationID]; ok {
				row.LocationCode = loc.Code
			}
			st.stock[k] = row
		}
		row.Quantity = next
		return nil
	})
	return newQty, err
}

// LockKey no-op: las transacciones en memoria ya son serializables.
func (r *StockRepo) LockKey(context.Context, inventory.Key) error { return nil }

// PhysicalTotal suma de filas de la llave.
func (r *StockRepo) PhysicalTotal(_ context.Context, key inventory.Key) (int64, error) {
	var total int64
	r.v.read(func(st *state) {
		for k, row := range st.stock {
			if k.warehouseID == key.WarehouseID && k.productID == key.ProductID {
				total += row.Quantity
			}
		}
	})
	return total, nil
}

// PhysicalTotals suma de filas por llave.
func (r *StockRepo) PhysicalTotals(context.Context) (map[inventory.Key]int64, error) {
	out := make(map[inventory.Key]int64)
	r.v.read(func(st *state) {
		for k, row := range st.stock {
			out[inventory.Key{WarehouseID: k.warehouseID, ProductID: k.productID}] += row.Quantity
		}
	})
	return out, nil
}

// MovementRepo ledger en memoria (solo append).
type MovementRepo struct{ v view }

// Append agrega un movimiento asignando Seq. ID y Seq se copian al movimiento del llamador
// solo cuando la transacción confirma.
func (r *MovementRepo) Append(_ context.Context, m *entity.Movement) error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: tipo %q", domain.ErrWrite, m.Type)
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("%w: cantidad %d", domain.ErrWrite, m.Quantity)
	}
	return r.v.write(func(st *state) error {
		c := *m
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		st.nextSeq++
		c.Seq = st.nextSeq
		st.movements = append(st.movements, &c)
		id, seq := c.ID, c.Seq
		r.v.afterCommit(func() {
			m.ID, m.Seq = id, seq
		})
		return nil
	})
}

// ListByFolio movimientos del folio en orden de inserción.
func (r *MovementRepo) ListByFolio(_ context.Context, folio string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.Folio == folio {
				c := *m
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

// AccountingTotal suma con signo de la llave.
func (r *MovementRepo) AccountingTotal(_ context.Context, key inventory.Key) (int64, error) {
	var total int64
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.WarehouseID == key.WarehouseID && m.ProductID == key.ProductID {
				total += m.Delta()
			}
		}
	})
	return total, nil
}

// AccountingTotals suma con signo por llave.
func (r *MovementRepo) AccountingTotals(context.Context) (map[inventory.Key]int64, error) {
	out := make(map[inventory.Key]int64)
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			out[inventory.Key{WarehouseID: m.WarehouseID, ProductID: m.ProductID}] += m.Delta()
		}
	})
	return out, nil
}

// TransferRepo encabezados de traslado.
type TransferRepo struct{ v view }

// Create falla con domain.ErrDuplicateFolio si el folio existe.
func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.transfers[t.Folio]; ok {
			return domain.ErrDuplicateFolio
		}
		c := *t
		st.transfers[t.Folio] = &c
		return nil
	})
}

// GetByFolio devuelve nil si no existe.
func (r *TransferRepo) GetByFolio(_ context.Context, folio string) (*entity.Transfer, error) {
	var out *entity.Transfer
	r.v.read(func(st *state) {
		if t, ok := st.transfers[folio]; ok {
			c := *t
			out = &c
		}
	})
	return out, nil
}

// DispatchRepo encabezados de salida y evidencias.
type DispatchRepo struct{ v view }

// Create falla con domain.ErrDuplicateFolio si el folio existe.
func (r *DispatchRepo) Create(_ context.Context, d *entity.DispatchDocument) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.dispatches[d.Folio]; ok {
			return domain.ErrDuplicateFolio
		}
		c := *d
		st.dispatches[d.Folio] = &c
		return nil
	})
}

// GetByFolio devuelve nil si no existe.
func (r *DispatchRepo) GetByFolio(_ context.Context, folio string) (*entity.DispatchDocument, error) {
	var out *entity.DispatchDocument
	r.v.read(func(st *state) {
		if d, ok := st.dispatches[folio]; ok {
			c := *d
			out = &c
		}
	})
	return out, nil
}

// AttachProof registra (o reemplaza) la evidencia del folio.
func (r *DispatchRepo) AttachProof(_ context.Context, p *entity.DispatchProof) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.dispatches[p.Folio]; !ok {
			return domain.ErrNotFound
		}
		c := *p
		st.proofs[p.Folio] = &c
		return nil
	})
}

// GetProof devuelve nil si el folio no tiene evidencia.
func (r *DispatchRepo) GetProof(_ context.Context, folio string) (*entity.DispatchProof, error) {
	var out *entity.DispatchProof
	r.v.read(func(st *state) {
		if p, ok := st.proofs[folio]; ok {
			c := *p
			out = &c
		}
	})
	return out, nil
}

// ProductRepo productos en memoria.
type ProductRepo struct{ v view }

// GetByID devuelve nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			c := *p
			out = &c
		}
	})
	return out, nil
}

// AdjustStockCounter suma delta al contador desnormalizado.
func (r *ProductRepo) AdjustStockCounter(_ context.Context, productID string, delta int64) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockCounter += delta
		return nil
	})
}

// WarehouseRepo bodegas y ubicaciones en memoria.
type WarehouseRepo struct{ v view }

// GetByID devuelve nil si no existe.
func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			c := *w
			out = &c
		}
	})
	return out, nil
}

// GetLocation devuelve nil si no existe.
func (r *WarehouseRepo) GetLocation(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	r.v.read(func(st *state) {
		if l, ok := st.locations[id]; ok {
			c := *l
			out = &c
		}
	})
	return out, nil
}

// FolioSequence secuencias por familia. No participan del rollback.
type FolioSequence struct{ v view }

// Next incrementa y devuelve la secuencia de la familia.
func (r *FolioSequence) Next(_ context.Context, family string) (int64, error) {
	var n int64
	err := r.v.write(func(*state) error {
		r.v.store.sequences[family]++
		n = r.v.store.sequences[family]
		return nil
	})
	return n, err
}
