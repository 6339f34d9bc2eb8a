package http

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var validate = validator.New()

// bindJSON parsea el cuerpo y aplica las reglas `validate` del DTO.
// Devuelve false si ya respondió con 400.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Namespace()] = fe.Tag()
			}
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return true, nil
}

// respondError traduce los errores del dominio a códigos HTTP.
func respondError(c *fiber.Ctx, err error) error {
	var (
		verr *domain.ValidationError
		ins  *domain.InsufficientStockError
		neg  *domain.NegativeStockError
		part *domain.PartialFailureError
	)
	switch {
	case errors.As(err, &part):
		return c.Status(fiber.StatusMultiStatus).JSON(dto.PartialFailureResponse{
			Code:      "PARTIAL_FAILURE",
			Message:   part.Error(),
			Folio:     part.Folio,
			Completed: part.Completed,
			Failed:    part.Failed,
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: verr.Message, Fields: map[string]string{verr.Field: verr.Message},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrNoStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_STOCK", Message: "el producto no tiene existencia en la bodega"})
	case errors.As(err, &ins):
		msg := fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", ins.Requested, ins.Available)
		if ins.LocationID != "" {
			msg = fmt.Sprintf("stock insuficiente en ubicación %s: solicitado %d, disponible %d", ins.LocationID, ins.Requested, ins.Available)
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: msg})
	case errors.As(err, &neg):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "NEGATIVE_STOCK", Message: fmt.Sprintf("el ajuste dejaría la ubicación en %d", neg.Current+neg.Delta),
		})
	case errors.Is(err, domain.ErrExceedsPending):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EXCEEDS_PENDING", Message: "la cantidad supera lo pendiente por ubicar"})
	case errors.Is(err, domain.ErrDuplicateFolio):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_FOLIO", Message: "no se pudo asignar un folio único, reintente"})
	case errors.Is(err, domain.ErrProofStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento de evidencias no configurado"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
