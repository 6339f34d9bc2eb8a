package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger sobre PostgreSQL. La tabla tiene un trigger que rechaza UPDATE y DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento y asigna Seq.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: tipo %q", domain.ErrWrite, m.Type)
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("%w: cantidad %d", domain.ErrWrite, m.Quantity)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, type, warehouse_id, product_id, quantity, folio, source_location_id,
			authorizer, origin_project, destination_project, dispatch_mode, unit_cost, total_cost, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, string(m.Type), m.WarehouseID, m.ProductID, m.Quantity, m.Folio, m.SourceLocationID,
		m.Authorizer, m.OriginProject, m.DestinationProject, string(m.DispatchMode),
		m.UnitCost, m.TotalCost, m.CreatedAt, m.CreatedBy,
	).Scan(&m.Seq)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrWrite, err)
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// ListByFolio movimientos del folio en orden de inserción.
func (r *MovementRepo) ListByFolio(ctx context.Context, folio string) ([]*entity.Movement, error) {
	query := `
		SELECT seq, id, type, warehouse_id, product_id, quantity, folio, source_location_id,
			authorizer, origin_project, destination_project, dispatch_mode, unit_cost, total_cost, created_at, created_by
		FROM movements WHERE folio = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, folio)
	if err != nil {
		return nil, fmt.Errorf("list movements by folio: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var typ, mode string
		if err := rows.Scan(&m.Seq, &m.ID, &typ, &m.WarehouseID, &m.ProductID, &m.Quantity, &m.Folio,
			&m.SourceLocationID, &m.Authorizer, &m.OriginProject, &m.DestinationProject, &mode,
			&m.UnitCost, &m.TotalCost, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		m.DispatchMode = entity.DispatchMode(mode)
		list = append(list, &m)
	}
	return list, rows.Err()
}

const signedQuantity = `CASE WHEN type IN ('INBOUND', 'TRANSFER_IN') THEN quantity ELSE -quantity END`

// AccountingTotal suma con signo del ledger para la llave.
func (r *MovementRepo) AccountingTotal(ctx context.Context, key inventory.Key) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(`+signedQuantity+`), 0)::bigint FROM movements
		WHERE warehouse_id = $1 AND product_id = $2`,
		key.WarehouseID, key.ProductID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("accounting total: %w", err)
	}
	return total, nil
}

// AccountingTotals suma con signo por llave.
func (r *MovementRepo) AccountingTotals(ctx context.Context) (map[inventory.Key]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT warehouse_id, product_id, SUM(`+signedQuantity+`)::bigint
		FROM movements GROUP BY warehouse_id, product_id`)
	if err != nil {
		return nil, fmt.Errorf("accounting totals: %w", err)
	}
	defer rows.Close()
	return scanTotals(rows)
}
