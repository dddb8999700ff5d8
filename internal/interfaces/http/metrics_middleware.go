package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestObserver registra métricas por petición.
type RequestObserver interface {
	ObserveRequest(route, method, code string, elapsed time.Duration)
}

// MetricsMiddleware mide cada petición con la ruta registrada (no la URL) para acotar etiquetas.
func MetricsMiddleware(obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.ObserveRequest(c.Route().Path, c.Method(), strconv.Itoa(status), time.Since(start))
		return err
	}
}
