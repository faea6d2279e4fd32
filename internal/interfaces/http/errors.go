package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
)

// respondError traduce un error de dominio a su respuesta HTTP.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "operación no permitida"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// errorCode devuelve el código de la taxonomía para errores por ítem en
// operaciones masivas.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrDuplicate):
		return "DUPLICATE"
	default:
		return "INTERNAL"
	}
}
