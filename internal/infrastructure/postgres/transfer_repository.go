package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.TransferRepository = (*TransferRepo)(nil)
	_ repository.DispatchRepository = (*DispatchRepo)(nil)
)

// TransferRepo encabezados de traslado.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste el encabezado. Un folio repetido devuelve domain.ErrDuplicateFolio.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, folio, origin_warehouse_id, destination_warehouse_id,
			origin_project, destination_project, authorizer, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Folio, t.OriginWarehouseID, t.DestinationWarehouseID,
		t.OriginProject, t.DestinationProject, t.Authorizer, t.CreatedAt, t.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateFolio
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByFolio obtiene el encabezado; nil si no existe.
func (r *TransferRepo) GetByFolio(ctx context.Context, folio string) (*entity.Transfer, error) {
	query := `
		SELECT id, folio, origin_warehouse_id, destination_warehouse_id,
			origin_project, destination_project, authorizer, created_at, created_by
		FROM transfers WHERE folio = $1`
	var t entity.Transfer
	err := r.q.QueryRow(ctx, query, folio).Scan(
		&t.ID, &t.Folio, &t.OriginWarehouseID, &t.DestinationWarehouseID,
		&t.OriginProject, &t.DestinationProject, &t.Authorizer, &t.CreatedAt, &t.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return &t, nil
}

// DispatchRepo encabezados de salida y evidencias de entrega.
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

// Create persiste el encabezado. Un folio repetido devuelve domain.ErrDuplicateFolio.
func (r *DispatchRepo) Create(ctx context.Context, d *entity.DispatchDocument) error {
	query := `
		INSERT INTO dispatches (id, folio, warehouse_id, mode, project_id, subcontractor_id, external_company,
			reason, receiver_name, receiver_id_number, receiver_stage, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Folio, d.WarehouseID, string(d.Mode), d.ProjectID, d.SubcontractorID, d.ExternalCompany,
		d.Reason, d.Receiver.Name, d.Receiver.IDNumber, d.Receiver.Stage, d.CreatedAt, d.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateFolio
		}
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// GetByFolio obtiene el encabezado; nil si no existe.
func (r *DispatchRepo) GetByFolio(ctx context.Context, folio string) (*entity.DispatchDocument, error) {
	query := `
		SELECT id, folio, warehouse_id, mode, project_id, subcontractor_id, external_company,
			reason, receiver_name, receiver_id_number, receiver_stage, created_at, created_by
		FROM dispatches WHERE folio = $1`
	var d entity.DispatchDocument
	var mode string
	err := r.q.QueryRow(ctx, query, folio).Scan(
		&d.ID, &d.Folio, &d.WarehouseID, &mode, &d.ProjectID, &d.SubcontractorID, &d.ExternalCompany,
		&d.Reason, &d.Receiver.Name, &d.Receiver.IDNumber, &d.Receiver.Stage, &d.CreatedAt, &d.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	d.Mode = entity.DispatchMode(mode)
	return &d, nil
}

// AttachProof registra o reemplaza la evidencia del folio.
func (r *DispatchRepo) AttachProof(ctx context.Context, p *entity.DispatchProof) error {
	query := `
		INSERT INTO dispatch_proofs (folio, object_url, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (folio) DO UPDATE
		SET object_url = EXCLUDED.object_url, uploaded_at = EXCLUDED.uploaded_at, uploaded_by = EXCLUDED.uploaded_by`
	_, err := r.q.Exec(ctx, query, p.Folio, p.ObjectURL, p.UploadedAt, p.UploadedBy)
	if err != nil {
		return fmt.Errorf("attach proof: %w", err)
	}
	return nil
}

// GetProof evidencia del folio; nil si no tiene.
func (r *DispatchRepo) GetProof(ctx context.Context, folio string) (*entity.DispatchProof, error) {
	var p entity.DispatchProof
	err := r.q.QueryRow(ctx, `
		SELECT folio, object_url, uploaded_at, uploaded_by FROM dispatch_proofs WHERE folio = $1`, folio,
	).Scan(&p.Folio, &p.ObjectURL, &p.UploadedAt, &p.UploadedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proof: %w", err)
	}
	return &p, nil
}
