package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrNoStock                 = errors.New("no hay stock físico para el producto en la bodega")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrNegativeStock           = errors.New("el ajuste dejaría la ubicación en negativo")
	ErrDuplicateFolio          = errors.New("folio duplicado")
	ErrPartialFailure          = errors.New("operación aplicada parcialmente")
	ErrWrite                   = errors.New("error de escritura en el ledger")
	ErrExceedsPending          = errors.New("la cantidad excede lo pendiente por ubicar")
	ErrProofStorageUnavailable = errors.New("almacenamiento de evidencias no configurado")
)

// ValidationError indica un campo requerido ausente o inválido. Se rechaza antes de cualquier mutación.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid atajo para construir un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError la cantidad solicitada supera lo disponible en una ubicación concreta.
// LocationID vacío significa que se comparó contra el total de la bodega.
type InsufficientStockError struct {
	ProductID  string
	LocationID string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	if e.LocationID == "" {
		return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.ProductID, e.Requested, e.Available)
	}
	return fmt.Sprintf("stock insuficiente para %s en ubicación %s: solicitado %d, disponible %d",
		e.ProductID, e.LocationID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NegativeStockError un decremento llevaría la fila de ubicación por debajo de cero.
type NegativeStockError struct {
	WarehouseID string
	ProductID   string
	LocationID  string
	Current     int64
	Delta       int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("ajuste %d sobre %d en ubicación %s dejaría stock negativo", e.Delta, e.Current, e.LocationID)
}

func (e *NegativeStockError) Unwrap() error { return ErrNegativeStock }

// PartialFailureError una operación de varios pasos falló después de aplicar algunos de ellos.
// Solo se usa en pasos posteriores al commit (p. ej. evidencia subida pero no registrada).
type PartialFailureError struct {
	Folio     string
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("folio %s: completado [%s], falló %s: %v", e.Folio, strings.Join(e.Completed, ", "), e.Failed, e.Err)
}

// Unwrap expone tanto el sentinel como la causa original.
func (e *PartialFailureError) Unwrap() []error { return []error{ErrPartialFailure, e.Err} }
