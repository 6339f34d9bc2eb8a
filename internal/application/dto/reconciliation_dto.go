package dto

// BalanceDTO saldo de una llave (bodega, producto).
type BalanceDTO struct {
	WarehouseID string `json:"warehouse_id"`
	ProductID   string `json:"product_id"`
	Accounting  int64  `json:"accounting"`
	Physical    int64  `json:"physical"`
	Pending     int64  `json:"pending"`
}

// ReconciliationReport respuesta de GET /api/reconciliation.
type ReconciliationReport struct {
	PendingKeys int          `json:"pending_keys"`
	AnomalyKeys int          `json:"anomaly_keys"`
	Balances    []BalanceDTO `json:"balances"`
}

// PendingCountResponse respuesta de GET /api/reconciliation/pending-count.
type PendingCountResponse struct {
	Count int `json:"count"`
}
