package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := PoolConfig(config.DatabaseConfig{
		URL:             "postgres://tracker:secret@db:5433/tracker?sslmode=disable",
		MaxOpenConns:    8,
		MaxIdleConns:    20,
		MaxConnLifetime: time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(5433), cfg.ConnConfig.Port)
	assert.Equal(t, "tracker", cfg.ConnConfig.Database)
	assert.Equal(t, int32(8), cfg.MaxConns)
	assert.Equal(t, int32(8), cfg.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.MaxConnIdleTime)
	assert.Equal(t, connectTimeout, cfg.ConnConfig.ConnectTimeout)
}

func TestPoolConfig_InvalidURL(t *testing.T) {
	_, err := PoolConfig(config.DatabaseConfig{URL: "postgres://%zz"})
	assert.Error(t, err)
}
