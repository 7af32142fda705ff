package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/pkg/config"
)

func TestApplyPoolConfig_UsaLaConfiguracion(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://app:secret@db:5432/inv?sslmode=disable")
	require.NoError(t, err)

	applyPoolConfig(pc, config.PoolConfig{
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 15 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  3 * time.Second,
	})

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 15*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, 3*time.Second, pc.ConnConfig.ConnectTimeout)
}

func TestApplyPoolConfig_CerosConservanLosValoresDePgx(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://app:secret@db:5432/inv?sslmode=disable&pool_max_conns=7")
	require.NoError(t, err)
	lifetime := pc.MaxConnLifetime

	applyPoolConfig(pc, config.PoolConfig{})

	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, lifetime, pc.MaxConnLifetime)
}
