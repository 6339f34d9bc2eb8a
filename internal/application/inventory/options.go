package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Option configura colaboradores opcionales de los casos de uso.
type Option func(*collaborators)

type collaborators struct {
	publisher EventPublisher
	gate      CommitGate
	metrics   MetricsRecorder
	log       zerolog.Logger
	now       func() time.Time
}

func newCollaborators(opts []Option) collaborators {
	c := collaborators{
		publisher: nopPublisher{},
		gate:      nopGate{},
		metrics:   nopMetrics{},
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithPublisher notifica cambios de ledger/stock después de cada commit.
func WithPublisher(p EventPublisher) Option {
	return func(c *collaborators) {
		if p != nil {
			c.publisher = p
		}
	}
}

// WithCommitGate impide que un Recompute caiga entre el commit y la publicación de sus eventos.
func WithCommitGate(g CommitGate) Option {
	return func(c *collaborators) {
		if g != nil {
			c.gate = g
		}
	}
}

// WithMetrics registra commits y fallos.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *collaborators) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger logger estructurado del caso de uso.
func WithLogger(l zerolog.Logger) Option {
	return func(c *collaborators) { c.log = l }
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *collaborators) {
		if now != nil {
			c.now = now
		}
	}
}

// publish notifica sin propagar el error: el commit ya ocurrió y el motor puede recalcular con Recompute.
func (c collaborators) publish(ctx context.Context, events []ChangeEvent) {
	if len(events) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, events...); err != nil {
		c.log.Warn().Err(err).Int("events", len(events)).Msg("publicar cambios")
	}
}

// failureReason etiqueta corta para métricas.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNoStock):
		return "no_stock"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNegativeStock):
		return "negative_stock"
	case errors.Is(err, domain.ErrDuplicateFolio):
		return "duplicate_folio"
	case errors.Is(err, domain.ErrPartialFailure):
		return "partial_failure"
	default:
		return "internal"
	}
}
