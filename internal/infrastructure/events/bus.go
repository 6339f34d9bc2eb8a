// Package events entrega las notificaciones de cambio del motor de inventario
// (ledger y ubicaciones) a sus consumidores: el motor de reconciliación en proceso y Redis.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.EventPublisher = (*Bus)(nil)

// Bus reparte cada lote de eventos a todos los publicadores registrados, en orden de registro.
// Un publicador que falla no impide la entrega a los demás.
type Bus struct {
	mu   sync.RWMutex
	subs []inventory.EventPublisher
}

// NewBus crea el bus con publicadores iniciales (se ignoran los nil).
func NewBus(subs ...inventory.EventPublisher) *Bus {
	b := &Bus{}
	for _, s := range subs {
		b.Subscribe(s)
	}
	return b
}

// Subscribe agrega un publicador.
func (b *Bus) Subscribe(p inventory.EventPublisher) {
	if p == nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, p)
	b.mu.Unlock()
}

// Publish entrega los eventos a cada suscriptor y devuelve los errores combinados.
func (b *Bus) Publish(ctx context.Context, events ...inventory.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	b.mu.RLock()
	subs := make([]inventory.EventPublisher, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
