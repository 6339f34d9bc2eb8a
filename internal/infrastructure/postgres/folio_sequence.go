package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.FolioSequence = (*FolioSequence)(nil)

// sequenceByFamily secuencias creadas por la migración inicial.
var sequenceByFamily = map[string]string{
	inventory.FolioFamilyTransfer: "transfer_folio_seq",
	inventory.FolioFamilyDispatch: "dispatch_folio_seq",
}

// FolioSequence folios consecutivos con nextval: atómico entre transacciones concurrentes
// y no se revierte con el rollback.
type FolioSequence struct {
	q Querier
}

// NewFolioSequence construye el adaptador. Pasar pool o tx (Querier).
func NewFolioSequence(q Querier) *FolioSequence {
	return &FolioSequence{q: q}
}

// Next siguiente valor de la secuencia de la familia.
func (s *FolioSequence) Next(ctx context.Context, family string) (int64, error) {
	seq, ok := sequenceByFamily[family]
	if !ok {
		return 0, fmt.Errorf("secuencia desconocida para %q", family)
	}
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT nextval($1::regclass)`, seq).Scan(&n); err != nil {
		return 0, fmt.Errorf("nextval %s: %w", seq, err)
	}
	return n, nil
}
