package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "idem:"
	pendingValue = "pending"
)

// ErrInFlight indica que otra petición con la misma clave sigue en curso.
var ErrInFlight = errors.New("petición con la misma clave de idempotencia en curso")

// StoredResponse es la respuesta guardada para repetirla ante reintentos.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore guarda en Redis la respuesta de cada Idempotency-Key.
// Un store con cliente nil no hace nada: todas las peticiones pasan.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Enabled indica si hay Redis detrás.
func (s *IdempotencyStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Reserve marca la clave como en curso. Si ya existe devuelve la respuesta guardada,
// o ErrInFlight si la primera petición aún no termina.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (*StoredResponse, error) {
	if !s.Enabled() {
		return nil, nil
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pendingValue, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("reservar clave: %w", err)
	}
	if ok {
		return nil, nil
	}
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		// Expiró entre SetNX y Get: se trata como nueva.
		return s.Reserve(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("leer clave: %w", err)
	}
	if string(raw) == pendingValue {
		return nil, ErrInFlight
	}
	var stored StoredResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decodificar respuesta guardada: %w", err)
	}
	return &stored, nil
}

// Save guarda la respuesta final de la clave.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp StoredResponse) error {
	if !s.Enabled() {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err()
}

// Release libera la clave para que el cliente pueda reintentar (respuestas de error).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Del(ctx, keyPrefix+key).Err()
}
