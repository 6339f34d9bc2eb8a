package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Familias de folio.
const (
	FolioFamilyTransfer = "transfer"
	FolioFamilyDispatch = "dispatch"

	maxFolioAttempts = 3
)

// NextFolio toma el siguiente valor de la secuencia atómica de la familia y le da formato:
// traslados "TRF-<n>", salidas "SAL-<n con 6 dígitos>".
func NextFolio(ctx context.Context, seq repository.FolioSequence, family string) (string, error) {
	n, err := seq.Next(ctx, family)
	if err != nil {
		return "", fmt.Errorf("folio %s: %w", family, err)
	}
	switch family {
	case FolioFamilyTransfer:
		return fmt.Sprintf("TRF-%d", n), nil
	case FolioFamilyDispatch:
		return fmt.Sprintf("SAL-%06d", n), nil
	}
	return "", fmt.Errorf("familia de folio desconocida %q", family)
}

// runWithFolioRetry repite la transacción completa si el encabezado choca con un folio existente.
// La transacción fallida no deja efectos, así que reintentar es seguro.
func runWithFolioRetry(ctx context.Context, tx TxRunner, fn func(repos TxRepos) error) error {
	var err error
	for attempt := 0; attempt < maxFolioAttempts; attempt++ {
		err = tx.Run(ctx, fn)
		if !errors.Is(err, domain.ErrDuplicateFolio) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
