package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LocationStockRepository = (*LocationStockRepo)(nil)

// LocationStockRepo stock por ubicación sobre PostgreSQL (usable con pool o tx).
type LocationStockRepo struct {
	q Querier
}

// NewLocationStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationStockRepository(q Querier) *LocationStockRepo {
	return &LocationStockRepo{q: q}
}

const locationStockColumns = `
	ls.id, ls.warehouse_id, ls.product_id, ls.location_id, COALESCE(l.code, ''), ls.quantity, ls.updated_at`

// ListAvailable filas con existencia ordenadas por código de ubicación.
func (r *LocationStockRepo) ListAvailable(ctx context.Context, warehouseID, productID string) ([]*entity.LocationStock, error) {
	query := `SELECT` + locationStockColumns + `
		FROM location_stock ls
		LEFT JOIN locations l ON l.id = ls.location_id
		WHERE ls.warehouse_id = $1 AND ls.product_id = $2 AND ls.quantity > 0
		ORDER BY l.code, ls.location_id`
	rows, err := r.q.Query(ctx, query, warehouseID, productID)
	if err != nil {
		return nil, fmt.Errorf("list location stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.LocationStock
	for rows.Next() {
		var s entity.LocationStock
		if err := rows.Scan(&s.ID, &s.WarehouseID, &s.ProductID, &s.LocationID, &s.LocationCode, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE). nil si la ubicación no tiene fila.
func (r *LocationStockRepo) GetForUpdate(ctx context.Context, warehouseID, productID, locationID string) (*entity.LocationStock, error) {
	query := `SELECT` + locationStockColumns + `
		FROM location_stock ls
		LEFT JOIN locations l ON l.id = ls.location_id
		WHERE ls.warehouse_id = $1 AND ls.product_id = $2 AND ls.location_id = $3
		FOR UPDATE OF ls`
	var s entity.LocationStock
	err := r.q.QueryRow(ctx, query, warehouseID, productID, locationID).Scan(
		&s.ID, &s.WarehouseID, &s.ProductID, &s.LocationID, &s.LocationCode, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location stock for update: %w", err)
	}
	return &s, nil
}

// Adjust aplica delta en una sola sentencia. Un decremento que dejaría la fila bajo cero no afecta
// filas y se reporta como *domain.NegativeStockError; al llegar a cero la fila se elimina.
func (r *LocationStockRepo) Adjust(ctx context.Context, warehouseID, productID, locationID string, delta int64) (int64, error) {
	if delta > 0 {
		var qty int64
		err := r.q.QueryRow(ctx, `
			INSERT INTO location_stock (id, warehouse_id, product_id, location_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (warehouse_id, product_id, location_id)
			DO UPDATE SET quantity = location_stock.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING quantity`,
			uuid.New().String(), warehouseID, productID, locationID, delta,
		).Scan(&qty)
		if err != nil {
			return 0, fmt.Errorf("increment location stock: %w", err)
		}
		return qty, nil
	}

	var qty int64
	err := r.q.QueryRow(ctx, `
		UPDATE location_stock SET quantity = quantity + $4, updated_at = now()
		WHERE warehouse_id = $1 AND product_id = $2 AND location_id = $3 AND quantity + $4 > 0
		RETURNING quantity`,
		warehouseID, productID, locationID, delta,
	).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("decrement location stock: %w", err)
	}

	// La fila se vacía exactamente o no alcanza.
	cmd, err := r.q.Exec(ctx, `
		DELETE FROM location_stock
		WHERE warehouse_id = $1 AND product_id = $2 AND location_id = $3 AND quantity = $4`,
		warehouseID, productID, locationID, -delta,
	)
	if err != nil {
		return 0, fmt.Errorf("delete empty location stock: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return 0, nil
	}
	var current int64
	err = r.q.QueryRow(ctx, `
		SELECT quantity FROM location_stock
		WHERE warehouse_id = $1 AND product_id = $2 AND location_id = $3`,
		warehouseID, productID, locationID,
	).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("read location stock: %w", err)
	}
	return 0, &domain.NegativeStockError{
		WarehouseID: warehouseID, ProductID: productID, LocationID: locationID,
		Current: current, Delta: delta,
	}
}

// LockKey serializa los incrementos de una llave (bodega, producto) hasta el fin de la transacción.
func (r *LocationStockRepo) LockKey(ctx context.Context, key inventory.Key) error {
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key.WarehouseID+"/"+key.ProductID)
	if err != nil {
		return fmt.Errorf("lock key: %w", err)
	}
	return nil
}

// PhysicalTotal suma de las ubicaciones de la llave.
func (r *LocationStockRepo) PhysicalTotal(ctx context.Context, key inventory.Key) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)::bigint FROM location_stock
		WHERE warehouse_id = $1 AND product_id = $2`,
		key.WarehouseID, key.ProductID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("physical total: %w", err)
	}
	return total, nil
}

// PhysicalTotals suma por llave de todo el almacenamiento.
func (r *LocationStockRepo) PhysicalTotals(ctx context.Context) (map[inventory.Key]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT warehouse_id, product_id, SUM(quantity)::bigint
		FROM location_stock GROUP BY warehouse_id, product_id`)
	if err != nil {
		return nil, fmt.Errorf("physical totals: %w", err)
	}
	defer rows.Close()
	return scanTotals(rows)
}

func scanTotals(rows pgx.Rows) (map[inventory.Key]int64, error) {
	out := make(map[inventory.Key]int64)
	for rows.Next() {
		var k inventory.Key
		var total int64
		if err := rows.Scan(&k.WarehouseID, &k.ProductID, &total); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		out[k] = total
	}
	return out, rows.Err()
}
