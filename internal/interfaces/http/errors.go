package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var (
		validation   *domain.ValidationError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientStockError
		conflict     *domain.ConflictError
		retryable    *domain.RetryableError
	)
	switch {
	case errors.As(err, &validation):
		details := map[string]any{}
		if validation.Field != "" {
			details["field"] = validation.Field
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validation.Error(), Details: details})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound.Error()})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficient.Error(),
			Details: map[string]any{
				"product_id":   insufficient.ProductID,
				"product_name": insufficient.ProductName,
				"warehouse_id": insufficient.WarehouseID,
				"batch_number": insufficient.BatchNumber,
				"available":    insufficient.Available.String(),
				"requested":    insufficient.Requested.String(),
			},
		})
	case errors.As(err, &retryable):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RETRYABLE", Message: "operación interrumpida por concurrencia, reintente"})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: conflict.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
