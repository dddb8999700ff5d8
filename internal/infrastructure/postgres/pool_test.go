package postgres

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurePool_Defaults(t *testing.T) {
	c, err := pgxpool.ParseConfig("postgres://app:secret@db:5432/tenant_a?sslmode=disable")
	require.NoError(t, err)

	configurePool(c, PoolOptions{})
	assert.Equal(t, int32(10), c.MaxConns)
	assert.Equal(t, int32(0), c.MinConns)
	assert.Equal(t, 30*time.Minute, c.MaxConnIdleTime)
	assert.NotNil(t, c.AfterConnect)
	_, ok := c.ConnConfig.RuntimeParams["application_name"]
	assert.False(t, ok)
}

func TestConfigurePool_Options(t *testing.T) {
	c, err := pgxpool.ParseConfig("postgres://app:secret@db:5432/tenant_a?sslmode=disable")
	require.NoError(t, err)

	configurePool(c, PoolOptions{AppName: "autotaller-t1", MinConns: 2, MaxConns: 4, MaxConnIdleTime: time.Minute})
	assert.Equal(t, int32(4), c.MaxConns)
	assert.Equal(t, int32(2), c.MinConns)
	assert.Equal(t, time.Minute, c.MaxConnIdleTime)
	assert.Equal(t, "autotaller-t1", c.ConnConfig.RuntimeParams["application_name"])

	// MinConns mayor que MaxConns se ignora
	configurePool(c, PoolOptions{MinConns: 8, MaxConns: 4})
	assert.Equal(t, int32(0), c.MinConns)
}

func TestLookupIPv4_Literals(t *testing.T) {
	ip, err := lookupIPv4(context.Background(), net.DefaultResolver, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = lookupIPv4(context.Background(), net.DefaultResolver, "::1")
	assert.Error(t, err)
}
