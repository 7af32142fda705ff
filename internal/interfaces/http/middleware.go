package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
)

// HeaderIdempotencyKey es la cabecera que deduplica POST reintentados por el cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

// requestObserver lo implementa *metrics.Metrics.
type requestObserver interface {
	ObserveRequest(route string, status int, elapsed time.Duration)
}

// RequestLogger registra cada petición con zerolog y, si hay observer, alimenta las métricas.
func RequestLogger(log zerolog.Logger, observer requestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if observer != nil {
			observer.ObserveRequest(route, status, elapsed)
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}

// Idempotency repite la respuesta guardada cuando un POST llega con una Idempotency-Key ya usada.
// Solo se guardan respuestas 2xx; un error libera la clave para reintentar.
// Si Redis falla la petición sigue sin protección.
func Idempotency(store *cache.IdempotencyStore, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || c.Method() != fiber.MethodPost || !store.Enabled() {
			return c.Next()
		}
		scoped := GetUserID(c) + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		stored, err := store.Reserve(ctx, scoped)
		if errors.Is(err, cache.ErrInFlight) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_FLIGHT", Message: "petición en curso con la misma Idempotency-Key"})
		}
		if err != nil {
			log.Warn().Err(err).Msg("idempotencia no disponible")
			return c.Next()
		}
		if stored != nil {
			c.Set("Idempotent-Replayed", "true")
			c.Set(fiber.HeaderContentType, stored.ContentType)
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, scoped)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			_ = store.Release(ctx, scoped)
			return nil
		}
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, scoped, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("no se guardó la respuesta idempotente")
		}
		return nil
	}
}
