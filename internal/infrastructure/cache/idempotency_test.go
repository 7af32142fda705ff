package cache_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/infrastructure/cache"
)

func newStore(t *testing.T) (*cache.IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewIdempotencyStore(client, time.Minute), mr
}

func TestIdempotency_PrimeraReservaPasa(t *testing.T) {
	store, _ := newStore(t)
	stored, err := store.Reserve(context.Background(), "k1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestIdempotency_EnCursoDevuelveErrInFlight(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	_, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)

	_, err = store.Reserve(ctx, "k1")
	assert.ErrorIs(t, err, cache.ErrInFlight)
}

func TestIdempotency_RepiteRespuestaGuardada(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	_, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "k1", cache.StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"x"}`)}))

	stored, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 201, stored.Status)
	assert.JSONEq(t, `{"id":"x"}`, string(stored.Body))
}

func TestIdempotency_ReleasePermiteReintentar(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	_, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k1"))

	stored, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestIdempotency_ExpiraConTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	_, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	stored, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestIdempotency_SinClienteNoHaceNada(t *testing.T) {
	store := cache.NewIdempotencyStore(nil, time.Minute)
	assert.False(t, store.Enabled())
	stored, err := store.Reserve(context.Background(), "k1")
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.NoError(t, store.Save(context.Background(), "k1", cache.StoredResponse{}))
}
