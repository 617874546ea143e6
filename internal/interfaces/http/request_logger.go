package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/santoshvandari/AccountingSystem/pkg/logger"
)

// HeaderRequestID cabecera de correlación; se respeta la del cliente si viene.
const HeaderRequestID = "X-Request-ID"

const localLogger = "logger"

// RequestLogging asigna un request id, deja un logger derivado en Locals y
// registra método, ruta, status y latencia al terminar.
func RequestLogging(base *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(HeaderRequestID, requestID)
		log := base.WithRequestID(requestID)
		c.Locals(localLogger, log)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}

// RequestLogger logger de la petición en curso; Nop si RequestLogging no está montado.
func RequestLogger(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}
