package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// testEnv app completa sobre el almacenamiento en memoria:
// bodega WH-A con ubicaciones LOC-1 (8 uds) y LOC-2 (4 uds) del producto P-1, y bodega WH-B vacía.
type testEnv struct {
	app   *fiber.App
	store *memory.Store
	recon *inventory.ReconciliationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	store.AddWarehouse(entity.Warehouse{ID: "WH-A", Name: "Central"})
	store.AddWarehouse(entity.Warehouse{ID: "WH-B", Name: "Obra Norte"})
	store.AddLocation(entity.Location{ID: "LOC-1", WarehouseID: "WH-A", Code: "A-01"})
	store.AddLocation(entity.Location{ID: "LOC-2", WarehouseID: "WH-A", Code: "A-02"})
	store.AddLocation(entity.Location{ID: "LOC-B1", WarehouseID: "WH-B", Code: "B-01"})
	store.AddProduct(entity.Product{ID: "P-1", Code: "CEM-50", Name: "Cemento 50kg", Cost: decimal.NewFromInt(10)})

	repos := store.Repos()
	recon := inventory.NewReconciliationService(repos.Movements, repos.Stock, zerolog.Nop())
	opts := []inventory.Option{inventory.WithPublisher(recon), inventory.WithCommitGate(recon)}

	stockUC := inventory.NewStockUseCase(store, repos.Stock, store.Warehouses(), opts...)
	transferUC := inventory.NewTransferUseCase(store, repos.Stock, repos.Movements, repos.Transfers, store.Warehouses(), opts...)
	dispatchUC := inventory.NewDispatchUseCase(store, repos.Stock, repos.Movements, repos.Dispatches, store.Warehouses(), nil, opts...)

	ctx := context.Background()
	_, err := stockUC.Receive(ctx, inventory.ReceiveInput{WarehouseID: "WH-A", ProductID: "P-1", Quantity: 12, Reference: "OC-100"})
	require.NoError(t, err)
	_, err = stockUC.PutAway(ctx, inventory.PutAwayInput{WarehouseID: "WH-A", ProductID: "P-1", LocationID: "LOC-1", Quantity: 8})
	require.NoError(t, err)
	_, err = stockUC.PutAway(ctx, inventory.PutAwayInput{WarehouseID: "WH-A", ProductID: "P-1", LocationID: "LOC-2", Quantity: 4})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:        stockUC,
		TransferUC:     transferUC,
		DispatchUC:     dispatchUC,
		Reconciliation: recon,
		JWTSecret:      testJWTSecret,
		ServiceName:    "stock-ledger-test",
	})
	return &testEnv{app: app, store: store, recon: recon}
}

func (e *testEnv) do(t *testing.T, method, target, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func transferBody(loc1, loc2 int64) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		OriginWarehouseID:      "WH-A",
		DestinationWarehouseID: "WH-B",
		Authorizer:             "Ing. Pérez",
		Items: []dto.TransferItemRequest{{
			ProductID: "P-1",
			Distribution: []dto.DistributionLineRequest{
				{LocationID: "LOC-1", Quantity: loc1},
				{LocationID: "LOC-2", Quantity: loc2},
			},
		}},
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", "", nil)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestStock_ListAvailable(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/stock/available?warehouse_id=WH-A&product_id=P-1", pkgjwt.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.AvailabilityResponse](t, resp)
	assert.Equal(t, int64(12), out.Total)
	require.Len(t, out.Locations, 2)
	assert.Equal(t, "A-01", out.Locations[0].LocationCode)
	assert.Equal(t, int64(8), out.Locations[0].Quantity)
}

func TestTransfer_CreateAndManifest(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/transfers", pkgjwt.RoleBodeguero, transferBody(5, 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, "TRF-1", created.Folio)
	assert.Len(t, created.Movements, 3)

	resp = env.do(t, http.MethodGet, "/api/transfers/"+created.Folio, pkgjwt.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	manifest := decode[dto.TransferManifestResponse](t, resp)
	assert.Equal(t, []dto.ManifestLineDTO{
		{ProductID: "P-1", LocationID: "LOC-1", Quantity: 5},
		{ProductID: "P-1", LocationID: "LOC-2", Quantity: 2},
	}, manifest.Lines)

	// La bodega destino queda con 7 unidades pendientes por ubicar.
	resp = env.do(t, http.MethodGet, "/api/reconciliation/pending-count", pkgjwt.RoleAuditor, nil)
	count := decode[dto.PendingCountResponse](t, resp)
	assert.Equal(t, 1, count.Count)
}

func TestTransfer_InsufficientStock_Retorna409SinCambios(t *testing.T) {
	env := newTestEnv(t)
	before := env.store.Snapshot()

	resp := env.do(t, http.MethodPost, "/api/transfers", pkgjwt.RoleBodeguero, transferBody(5, 6))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, before, env.store.Snapshot())
}

func TestTransfer_MismaBodega_Retorna400(t *testing.T) {
	env := newTestEnv(t)
	req := transferBody(1, 0)
	req.DestinationWarehouseID = "WH-A"

	resp := env.do(t, http.MethodPost, "/api/transfers", pkgjwt.RoleBodeguero, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "CreateTransferRequest.DestinationWarehouseID")
}

func TestTransfer_FolioDesconocido_Retorna404(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/transfers/TRF-999", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransfer_AuditorNoPuedeEscribir(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/transfers", pkgjwt.RoleAuditor, transferBody(1, 0))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDispatch_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	body := dto.CreateDispatchRequest{
		WarehouseID: "WH-A",
		Mode:        "DIRECT",
		ProjectID:   "PRJ-7",
		Receiver:    dto.ReceiverDTO{Name: "Juan Gómez", IDNumber: "1020"},
		Lines: []dto.DispatchLineRequest{
			{ProductID: "P-1", LocationID: "LOC-1", Quantity: 3},
			{ProductID: "P-1", LocationID: "LOC-2", Quantity: 4},
		},
	}

	resp := env.do(t, http.MethodPost, "/api/dispatches", pkgjwt.RoleBodeguero, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DispatchResponse](t, resp)
	assert.Equal(t, "SAL-000001", created.Folio)
	require.Len(t, created.Movements, 2)

	resp = env.do(t, http.MethodGet, "/api/dispatches/SAL-000001", pkgjwt.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.DispatchResponse](t, resp)
	assert.Equal(t, "Juan Gómez", got.Receiver.Name)
	assert.Nil(t, got.Proof)

	rows := env.store.Snapshot()
	require.Len(t, rows, 1)
	assert.Equal(t, "LOC-1", rows[0].LocationID)
	assert.Equal(t, int64(5), rows[0].Quantity)
}

func TestDispatch_ModoDirectoSinProyecto_Retorna400(t *testing.T) {
	env := newTestEnv(t)
	body := dto.CreateDispatchRequest{
		WarehouseID: "WH-A",
		Mode:        "DIRECT",
		Receiver:    dto.ReceiverDTO{Name: "Juan", IDNumber: "1"},
		Lines:       []dto.DispatchLineRequest{{ProductID: "P-1", LocationID: "LOC-1", Quantity: 1}},
	}
	resp := env.do(t, http.MethodPost, "/api/dispatches", pkgjwt.RoleBodeguero, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, out.Fields, "CreateDispatchRequest.ProjectID")
}

func TestDispatch_Pick(t *testing.T) {
	env := newTestEnv(t)
	body := dto.PickRequest{
		WarehouseID: "WH-A",
		ProductID:   "P-1",
		Allocations: []dto.DistributionLineRequest{{LocationID: "LOC-1", Quantity: 2}, {LocationID: "LOC-2", Quantity: 0}},
	}
	resp := env.do(t, http.MethodPost, "/api/dispatches/pick", pkgjwt.RoleBodeguero, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.PickResponse](t, resp)
	assert.Equal(t, []dto.DispatchLineRequest{{ProductID: "P-1", LocationID: "LOC-1", Quantity: 2}}, out.Lines)
}

func TestDispatch_ProofSinAlmacenamiento_Retorna503(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "acta.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 acta"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dispatches/SAL-000001/proof", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleBodeguero))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStock_AdjustSoloAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := dto.AdjustRequest{WarehouseID: "WH-A", ProductID: "P-1", LocationID: "LOC-1", Delta: -20}

	resp := env.do(t, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleBodeguero, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleAdmin, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "NEGATIVE_STOCK", out.Code)
}

func TestStock_AdjustUbicacionDeOtraBodega_Retorna400(t *testing.T) {
	env := newTestEnv(t)
	body := dto.AdjustRequest{WarehouseID: "WH-A", ProductID: "P-1", LocationID: "LOC-B1", Delta: -1}

	resp := env.do(t, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Fields, "location_id")
}

func TestStock_PutAwayExcedePendiente_Retorna409(t *testing.T) {
	env := newTestEnv(t)
	body := dto.PutAwayRequest{WarehouseID: "WH-A", ProductID: "P-1", LocationID: "LOC-1", Quantity: 1}

	resp := env.do(t, http.MethodPost, "/api/stock/put-away", pkgjwt.RoleBodeguero, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "EXCEEDS_PENDING", out.Code)
}

func TestReconciliation_RecomputeSoloAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/reconciliation/recompute", pkgjwt.RoleAuditor, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/reconciliation/recompute", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dto.ReconciliationReport](t, resp)
	assert.Equal(t, 0, report.PendingKeys)
	require.Len(t, report.Balances, 1)
	assert.Equal(t, dto.BalanceDTO{WarehouseID: "WH-A", ProductID: "P-1", Accounting: 12, Physical: 12}, report.Balances[0])
}
