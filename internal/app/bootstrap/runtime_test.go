package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/videobooker-api/internal/config"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, true))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: "  "}, nil, true))
}

func TestBuildRedisClientVerified(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.Discard(), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestBuildRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &appconfig.Config{RedisAddr: addr}
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logging.Discard(), true))

	unverified := BuildRedisClient(context.Background(), cfg, logging.Discard(), false)
	require.NotNil(t, unverified)
	_ = unverified.Close()
}

func TestBuildPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	assert.Nil(t, BuildPostgresPool(context.Background(), "", logging.Discard()))
}

func TestBuildPostgresPoolInvalidURLReturnsNil(t *testing.T) {
	assert.Nil(t, BuildPostgresPool(context.Background(), "postgres://%zz", logging.Discard()))
}
