package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

func TestRecorder_Counters(t *testing.T) {
	r := metrics.New("stock_ledger")

	r.Committed("transfer")
	r.Committed("transfer")
	r.Failed("dispatch", "insufficient_stock")

	n, err := testutil.GatherAndCount(r.Registry(), "stock_ledger_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "dos series: transfer/committed y dispatch/failed")

	n, err = testutil.GatherAndCount(r.Registry(), "stock_ledger_operation_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_ObserveSummaryAndHandler(t *testing.T) {
	r := metrics.New("stock_ledger")
	r.ObserveSummary(inventory.Summary{PendingKeys: 3, AnomalyKeys: 1, TrackedKeys: 7})

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "stock_ledger_reconciliation_pending_keys 3")
	assert.Contains(t, string(body), "stock_ledger_reconciliation_anomaly_keys 1")
	assert.Contains(t, string(body), "stock_ledger_reconciliation_tracked_keys 7")
}
