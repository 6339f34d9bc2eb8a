package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestReceive_RegistraInboundPendiente(t *testing.T) {
	f := newFixture(t)
	cost := decimal.RequireFromString("12.5")

	m, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{
		UserID: "u-1", WarehouseID: "W1", ProductID: "P", Quantity: 4, Reference: "OC-77", UnitCost: &cost,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementInbound, m.Type)
	assert.Equal(t, "OC-77", m.Folio)
	assert.Equal(t, "50", m.TotalCost.String())
	assert.Equal(t, int64(4), f.productCounter(t))
	assert.Empty(t, f.store.Snapshot(), "el físico no cambia hasta el put-away")
	assert.Equal(t, 1, f.recon.PendingCount())
}

func TestReceive_CostoPorDefectoDelProducto(t *testing.T) {
	f := newFixture(t)

	m, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{WarehouseID: "W1", ProductID: "P", Quantity: 3, Reference: "OC-1"})
	require.NoError(t, err)
	assert.Equal(t, "30", m.TotalCost.String())
}

func TestReceive_Validaciones(t *testing.T) {
	f := newFixture(t)
	neg := decimal.NewFromInt(-1)
	cases := map[string]inventory.ReceiveInput{
		"warehouse_id": {ProductID: "P", Quantity: 1, Reference: "x"},
		"product_id":   {WarehouseID: "W1", Quantity: 1, Reference: "x"},
		"quantity":     {WarehouseID: "W1", ProductID: "P", Reference: "x"},
		"reference":    {WarehouseID: "W1", ProductID: "P", Quantity: 1},
		"unit_cost":    {WarehouseID: "W1", ProductID: "P", Quantity: 1, Reference: "x", UnitCost: &neg},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.stock.Receive(context.Background(), in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
	assert.Empty(t, f.store.Movements())
}

func TestReceive_ProductoDesconocidoNoEscribe(t *testing.T) {
	f := newFixture(t)

	_, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{WarehouseID: "W1", ProductID: "X", Quantity: 1, Reference: "OC-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.Movements())
}

func TestPutAway_CubrePendiente(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{WarehouseID: "W1", ProductID: "P", Quantity: 6, Reference: "OC-1"})
	require.NoError(t, err)

	qty, err := f.stock.PutAway(context.Background(), inventory.PutAwayInput{WarehouseID: "W1", ProductID: "P", LocationID: "L1", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), qty)
	assert.Equal(t, 1, f.recon.PendingCount())

	qty, err = f.stock.PutAway(context.Background(), inventory.PutAwayInput{WarehouseID: "W1", ProductID: "P", LocationID: "L1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(6), qty)
	assert.Equal(t, 0, f.recon.PendingCount())

	rows, err := f.stock.ListAvailable(context.Background(), "W1", "P")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A-01", rows[0].LocationCode)
}

func TestPutAway_ExcedePendiente(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 2})

	_, err := f.stock.PutAway(context.Background(), inventory.PutAwayInput{WarehouseID: "W1", ProductID: "P", LocationID: "L2", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrExceedsPending)
	assert.Equal(t, int64(0), f.qty("W1", "L2"))
}

func TestPutAway_UbicacionDeOtraBodega(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{WarehouseID: "W1", ProductID: "P", Quantity: 1, Reference: "OC-1"})
	require.NoError(t, err)

	_, err = f.stock.PutAway(context.Background(), inventory.PutAwayInput{WarehouseID: "W1", ProductID: "P", LocationID: "M1", Quantity: 1})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location_id", verr.Field)

	_, err = f.stock.PutAway(context.Background(), inventory.PutAwayInput{WarehouseID: "W1", ProductID: "P", LocationID: "ZZ", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPutAway_RecibeTraslado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 5})
	_, err := f.transfer.CreateTransfer(context.Background(), transferInput(dist("L1", 5)))
	require.NoError(t, err)
	require.Equal(t, 1, f.recon.PendingCount())

	_, err = f.stock.PutAway(context.Background(), inventory.PutAwayInput{WarehouseID: "W2", ProductID: "P", LocationID: "M1", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, f.recon.PendingCount())
	assert.Equal(t, int64(5), f.qty("W2", "M1"))
}

func TestAdjustQuantity_NegativoRechazado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 3})

	_, err := f.stock.AdjustQuantity(context.Background(), inventory.AdjustInput{WarehouseID: "W1", ProductID: "P", LocationID: "L1", Delta: -4})

	var neg *domain.NegativeStockError
	require.ErrorAs(t, err, &neg)
	assert.Equal(t, int64(3), neg.Current)
	assert.Equal(t, int64(3), f.qty("W1", "L1"))
	assert.Equal(t, 1, f.metrics.failures("adjust/negative_stock"))
}

func TestAdjustQuantity_ACeroEliminaFila(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int64{"L1": 3})

	qty, err := f.stock.AdjustQuantity(context.Background(), inventory.AdjustInput{WarehouseID: "W1", ProductID: "P", LocationID: "L1", Delta: -3})
	require.NoError(t, err)
	assert.Zero(t, qty)
	assert.Empty(t, f.store.Snapshot())

	// Sin movimiento en el ledger el físico queda por debajo del contable.
	b := f.recon.Balance(domaininv.Key{WarehouseID: "W1", ProductID: "P"})
	assert.Equal(t, int64(3), b.Pending())
}

func TestAdjustQuantity_UbicacionDeOtraBodega(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{WarehouseID: "W1", ProductID: "P", Quantity: 2, Reference: "OC-1"})
	require.NoError(t, err)

	_, err = f.stock.AdjustQuantity(context.Background(), inventory.AdjustInput{WarehouseID: "W1", ProductID: "P", LocationID: "M1", Delta: 1})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location_id", verr.Field)
	assert.Empty(t, f.store.Snapshot())
	assert.Equal(t, int64(2), f.recon.Balance(domaininv.Key{WarehouseID: "W1", ProductID: "P"}).Pending())

	_, err = f.stock.AdjustQuantity(context.Background(), inventory.AdjustInput{WarehouseID: "W1", ProductID: "P", LocationID: "ZZ", Delta: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, f.metrics.failures("adjust/not_found"))
}

func TestAdjustQuantity_DeltaCero(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.AdjustQuantity(context.Background(), inventory.AdjustInput{WarehouseID: "W1", ProductID: "P", LocationID: "L1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAvailable_RequiereLlave(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.ListAvailable(context.Background(), "", "P")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rows, err := f.stock.ListAvailable(context.Background(), "W1", "P")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
