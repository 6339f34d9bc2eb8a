package inventory

import (
	"sort"
	"sync"
)

// Key identifica un saldo por bodega y producto.
type Key struct {
	WarehouseID string
	ProductID   string
}

// Balance compara el saldo contable (ledger) contra el físico (ubicaciones) de una llave.
type Balance struct {
	Key        Key
	Accounting int64
	Physical   int64
}

// Pending cantidad registrada contablemente que aún no está ubicada.
// Un valor negativo es una anomalía (físico mayor que contable).
func (b Balance) Pending() int64 {
	return b.Accounting - b.Physical
}

// Reconciler mantiene los mapas contable y físico por llave.
// Se actualiza de forma incremental con ApplyLedger/ApplyPhysical y se puede
// reconstruir completo con Rebuild. Llaves ausentes valen cero en ambos lados.
type Reconciler struct {
	mu         sync.RWMutex
	accounting map[Key]int64
	physical   map[Key]int64
}

// NewReconciler crea un reconciliador vacío.
func NewReconciler() *Reconciler {
	return &Reconciler{
		accounting: make(map[Key]int64),
		physical:   make(map[Key]int64),
	}
}

// Rebuild reemplaza ambos mapas con el resultado de un barrido completo.
func (r *Reconciler) Rebuild(accounting, physical map[Key]int64) {
	acc := make(map[Key]int64, len(accounting))
	for k, v := range accounting {
		if v != 0 {
			acc[k] = v
		}
	}
	phy := make(map[Key]int64, len(physical))
	for k, v := range physical {
		if v != 0 {
			phy[k] = v
		}
	}
	r.mu.Lock()
	r.accounting = acc
	r.physical = phy
	r.mu.Unlock()
}

// ApplyLedger suma un delta con signo al saldo contable.
func (r *Reconciler) ApplyLedger(k Key, delta int64) {
	r.mu.Lock()
	applyDelta(r.accounting, k, delta)
	r.mu.Unlock()
}

// ApplyPhysical suma un delta al saldo físico.
func (r *Reconciler) ApplyPhysical(k Key, delta int64) {
	r.mu.Lock()
	applyDelta(r.physical, k, delta)
	r.mu.Unlock()
}

func applyDelta(m map[Key]int64, k Key, delta int64) {
	v := m[k] + delta
	if v == 0 {
		delete(m, k)
		return
	}
	m[k] = v
}

// Balance devuelve el saldo de una llave.
func (r *Reconciler) Balance(k Key) Balance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Balance{Key: k, Accounting: r.accounting[k], Physical: r.physical[k]}
}

// Balances devuelve todas las llaves conocidas ordenadas por bodega y producto.
func (r *Reconciler) Balances() []Balance {
	r.mu.RLock()
	keys := make(map[Key]struct{}, len(r.accounting)+len(r.physical))
	for k := range r.accounting {
		keys[k] = struct{}{}
	}
	for k := range r.physical {
		keys[k] = struct{}{}
	}
	out := make([]Balance, 0, len(keys))
	for k := range keys {
		out = append(out, Balance{Key: k, Accounting: r.accounting[k], Physical: r.physical[k]})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.WarehouseID != out[j].Key.WarehouseID {
			return out[i].Key.WarehouseID < out[j].Key.WarehouseID
		}
		return out[i].Key.ProductID < out[j].Key.ProductID
	})
	return out
}

// PendingCount número de llaves distintas con brecha positiva (no la suma de cantidades).
func (r *Reconciler) PendingCount() int {
	n := 0
	for _, b := range r.Balances() {
		if b.Pending() > 0 {
			n++
		}
	}
	return n
}

// Pending llaves con cantidad pendiente por ubicar.
func (r *Reconciler) Pending() []Balance {
	var out []Balance
	for _, b := range r.Balances() {
		if b.Pending() > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Anomalies llaves cuyo físico supera al contable.
func (r *Reconciler) Anomalies() []Balance {
	var out []Balance
	for _, b := range r.Balances() {
		if b.Pending() < 0 {
			out = append(out, b)
		}
	}
	return out
}
