package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferRepository persistencia de encabezados de traslado.
// Create devuelve domain.ErrDuplicateFolio si el folio ya existe.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByFolio(ctx context.Context, folio string) (*entity.Transfer, error)
}

// DispatchRepository persistencia de encabezados de salida y sus evidencias de entrega.
type DispatchRepository interface {
	Create(ctx context.Context, doc *entity.DispatchDocument) error
	GetByFolio(ctx context.Context, folio string) (*entity.DispatchDocument, error)
	AttachProof(ctx context.Context, proof *entity.DispatchProof) error
	GetProof(ctx context.Context, folio string) (*entity.DispatchProof, error)
}

// FolioSequence secuencia atómica por familia de documentos (traslados, salidas).
type FolioSequence interface {
	Next(ctx context.Context, family string) (int64, error)
}
