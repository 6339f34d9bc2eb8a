package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func externalDispatch(lines ...inventory.DispatchLine) inventory.DispatchInput {
	return inventory.DispatchInput{
		UserID:          "u-1",
		WarehouseID:     "W1",
		Mode:            entity.DispatchExternal,
		ExternalCompany: "Constructora Andina",
		Reason:          "préstamo",
		Receiver:        entity.Receiver{Name: "Luis Torres", IDNumber: "79123"},
		Lines:           lines,
	}
}

func line(loc string, qty int64) inventory.DispatchLine {
	return inventory.DispatchLine{ProductID: "P", LocationID: loc, Quantity: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispatch
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatch_SalidaRepartidaEnDosUbicaciones(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 3, "L2": 2})
	require.Equal(t, int64(5), f.productCounter(t))

	res, err := f.dispatch.Dispatch(context.Background(), externalDispatch(line("L1", 3), line("L2", 2)))
	require.NoError(t, err)

	assert.Equal(t, "SAL-000001", res.Document.Folio)
	assert.Empty(t, res.Document.ProjectID)
	require.Len(t, res.Movements, 2)
	for _, m := range res.Movements {
		assert.Equal(t, entity.MovementOutbound, m.Type)
		assert.Equal(t, res.Document.Folio, m.Folio)
		assert.Equal(t, entity.DispatchExternal, m.DispatchMode)
	}
	assert.Equal(t, "L1", res.Movements[0].SourceLocationID)
	assert.Equal(t, "L2", res.Movements[1].SourceLocationID)

	assert.Empty(t, f.store.Snapshot())
	assert.Equal(t, int64(0), f.productCounter(t))
	assert.Equal(t, 0, f.recon.PendingCount())
	assert.Equal(t, 1, f.metrics.commits("dispatch"))
}

func TestDispatch_UnaLineaInsuficienteRechazaTodo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 2, "L2": 5})
	before, ledger := f.store.Snapshot(), len(f.store.Movements())

	_, err := f.dispatch.Dispatch(context.Background(), externalDispatch(line("L2", 2), line("L1", 3)))

	var ins *domain.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, "L1", ins.LocationID)
	assert.Equal(t, int64(2), ins.Available)

	assert.Equal(t, before, f.store.Snapshot())
	assert.Len(t, f.store.Movements(), ledger)
	assert.Equal(t, int64(7), f.productCounter(t))
	doc, err := f.store.Repos().Dispatches.GetByFolio(context.Background(), "SAL-000001")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 1, f.metrics.failures("dispatch/insufficient_stock"))
}

func TestDispatch_ExternoDescartaProyecto(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 2})
	in := externalDispatch(line("L1", 1))
	in.ProjectID = "PRJ-1"

	res, err := f.dispatch.Dispatch(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Document.ProjectID)
	assert.Empty(t, res.Movements[0].DestinationProject)
}

func TestDispatch_DirectoLlevaProyectoAlMovimiento(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 2})

	res, err := f.dispatch.Dispatch(context.Background(), inventory.DispatchInput{
		WarehouseID: "W1",
		Mode:        entity.DispatchDirect,
		ProjectID:   "PRJ-9",
		Receiver:    entity.Receiver{Name: "Ana", IDNumber: "1", Stage: "Cimentación"},
		Lines:       []inventory.DispatchLine{line("L1", 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "PRJ-9", res.Movements[0].DestinationProject)
	assert.Equal(t, "Cimentación", res.Document.Receiver.Stage)
}

func TestDispatchInput_Validate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(in *inventory.DispatchInput)
		field string
	}{
		{"sin bodega", func(in *inventory.DispatchInput) { in.WarehouseID = "" }, "warehouse_id"},
		{"modo desconocido", func(in *inventory.DispatchInput) { in.Mode = "LOAN" }, "mode"},
		{"directo sin proyecto", func(in *inventory.DispatchInput) { in.Mode = entity.DispatchDirect }, "project_id"},
		{"subcontrato sin subcontratista", func(in *inventory.DispatchInput) {
			in.Mode = entity.DispatchSubcontract
			in.ProjectID = "PRJ-1"
		}, "subcontractor_id"},
		{"externo sin empresa", func(in *inventory.DispatchInput) { in.ExternalCompany = "" }, "external_company"},
		{"sin receptor", func(in *inventory.DispatchInput) { in.Receiver.Name = "" }, "receiver.name"},
		{"sin identificación", func(in *inventory.DispatchInput) { in.Receiver.IDNumber = "" }, "receiver.id_number"},
		{"carrito vacío", func(in *inventory.DispatchInput) { in.Lines = nil }, "lines"},
		{"línea sin ubicación", func(in *inventory.DispatchInput) { in.Lines[0].LocationID = "" }, "location_id"},
		{"cantidad cero", func(in *inventory.DispatchInput) { in.Lines[0].Quantity = 0 }, "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, map[string]int64{"L1": 5})

			in := externalDispatch(line("L1", 1))
			tc.mut(&in)
			_, err := f.dispatch.Dispatch(context.Background(), in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, int64(5), f.qty("W1", "L1"))
		})
	}
}

func TestDispatch_BodegaDesconocida(t *testing.T) {
	f := newFixture(t)
	in := externalDispatch(line("L1", 1))
	in.WarehouseID = "W9"

	_, err := f.dispatch.Dispatch(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pick
// ──────────────────────────────────────────────────────────────────────────────

func TestPick_UnaLineaPorUbicacion(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 8, "L2": 4})

	lines, err := f.dispatch.Pick(context.Background(), "W1", "P", []entity.DistributionLine{dist("L1", 2), dist("L2", 0), dist("L2", 3)})
	require.NoError(t, err)
	assert.Equal(t, []inventory.DispatchLine{line("L1", 2), line("L2", 3)}, lines)
	assert.Equal(t, int64(8), f.qty("W1", "L1"), "pick no modifica el stock")
}

func TestPick_UbicacionSinExistencia(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 8})

	_, err := f.dispatch.Pick(context.Background(), "W1", "P", []entity.DistributionLine{dist("L2", 1)})

	var ins *domain.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, "L2", ins.LocationID)
}

func TestPick_AsignacionVacia(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 8})

	_, err := f.dispatch.Pick(context.Background(), "W1", "P", []entity.DistributionLine{dist("L1", 0)})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "allocations", verr.Field)

	_, err = f.dispatch.Pick(context.Background(), "W1", "P", []entity.DistributionLine{dist("L1", -1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPick_SinStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch.Pick(context.Background(), "W1", "P", []entity.DistributionLine{dist("L1", 1)})
	assert.ErrorIs(t, err, domain.ErrNoStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Evidencia de entrega
// ──────────────────────────────────────────────────────────────────────────────

func TestAttachProof_SubeYRegistra(t *testing.T) {
	storage := &fakeStorage{}
	f := newFixture(t, withStorage(storage))
	f.seed(t, map[string]int64{"L1": 2})
	res, err := f.dispatch.Dispatch(context.Background(), externalDispatch(line("L1", 2)))
	require.NoError(t, err)

	proof, err := f.dispatch.AttachProof(context.Background(), res.Document.Folio, "acta.pdf", "application/pdf", strings.NewReader("%PDF-1.4"), "u-2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(proof.ObjectURL, "https://storage.example/dispatches/SAL-000001/"))
	assert.True(t, strings.HasSuffix(proof.ObjectURL, ".pdf"))
	assert.Len(t, storage.uploaded, 1)

	detail, err := f.dispatch.GetDispatch(context.Background(), res.Document.Folio)
	require.NoError(t, err)
	require.NotNil(t, detail.Proof)
	assert.Equal(t, proof.ObjectURL, detail.Proof.ObjectURL)
	assert.Equal(t, "u-2", detail.Proof.UploadedBy)
	assert.Len(t, detail.Movements, 1)
}

func TestAttachProof_SinAlmacenamiento(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch.AttachProof(context.Background(), "SAL-000001", "acta.pdf", "application/pdf", strings.NewReader("x"), "u-1")
	assert.ErrorIs(t, err, domain.ErrProofStorageUnavailable)
}

func TestAttachProof_FolioDesconocido(t *testing.T) {
	storage := &fakeStorage{}
	f := newFixture(t, withStorage(storage))

	_, err := f.dispatch.AttachProof(context.Background(), "SAL-000404", "acta.pdf", "application/pdf", strings.NewReader("x"), "u-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, storage.uploaded)
}

func TestAttachProof_FalloDeSubida(t *testing.T) {
	f := newFixture(t, withStorage(&fakeStorage{err: errors.New("bucket inaccesible")}))
	f.seed(t, map[string]int64{"L1": 1})
	res, err := f.dispatch.Dispatch(context.Background(), externalDispatch(line("L1", 1)))
	require.NoError(t, err)

	_, err = f.dispatch.AttachProof(context.Background(), res.Document.Folio, "acta.png", "image/png", strings.NewReader("x"), "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPartialFailure)
	assert.Equal(t, 1, f.metrics.failures("dispatch_proof/upload"))
}

func TestAttachProof_RegistroFallaDespuesDeSubir(t *testing.T) {
	storage := &fakeStorage{}
	f := newFixture(t,
		withStorage(storage),
		withDispatchRepo(func(r repository.DispatchRepository) repository.DispatchRepository { return failingProofs{r} }),
	)
	f.seed(t, map[string]int64{"L1": 1})
	res, err := f.dispatch.Dispatch(context.Background(), externalDispatch(line("L1", 1)))
	require.NoError(t, err)

	_, err = f.dispatch.AttachProof(context.Background(), res.Document.Folio, "acta.jpg", "image/jpeg", strings.NewReader("x"), "u-1")

	var part *domain.PartialFailureError
	require.ErrorAs(t, err, &part)
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, res.Document.Folio, part.Folio)
	require.Len(t, part.Completed, 1)
	assert.Contains(t, part.Completed[0], "https://storage.example/dispatches/")
	assert.Len(t, storage.uploaded, 1)
}
