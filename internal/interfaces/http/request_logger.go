package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

const (
	localRequestID = "request_id"
	localLogger    = "logger"
)

// RequestID asigna X-Request-ID (o respeta el que envía el cliente).
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{ContextKey: localRequestID})
}

// RequestLogger registra cada petición con zerolog y deja un logger hijo (con request_id) en Locals.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := log.With().Str("request_id", localString(c, localRequestID)).Logger()
		c.Locals(localLogger, &reqLog)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}

func requestLog(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(localLogger).(*zerolog.Logger); ok && l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
