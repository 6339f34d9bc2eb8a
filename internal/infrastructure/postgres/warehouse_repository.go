package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo bodegas y ubicaciones sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `SELECT id, name, created_at FROM warehouses WHERE id = $1`, id).Scan(
		&w.ID, &w.Name, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// GetLocation obtiene una ubicación por ID.
func (r *WarehouseRepo) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, warehouse_id, code FROM locations WHERE id = $1`, id).Scan(
		&l.ID, &l.WarehouseID, &l.Code,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// Create persiste una nueva bodega (datos maestros).
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouses (id, name, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`, w.ID, w.Name, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// CreateLocation persiste una ubicación de la bodega.
func (r *WarehouseRepo) CreateLocation(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, warehouse_id, code) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`, l.ID, l.WarehouseID, l.Code)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}
