package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*SessionStoreRedis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStoreRedis(client, zap.NewNop()), mr
}

func TestSessionStoreRedis(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4()).String()

	revoked, err := store.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, id, time.Minute))
	revoked, err = store.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Minute, mr.TTL(revokedPrefix+id))

	other, err := store.IsRevoked(ctx, uuid.Must(uuid.NewV4()).String())
	require.NoError(t, err)
	assert.False(t, other)
}

func TestSessionStoreRedisExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "tok", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	revoked, err := store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionStoreRedisUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "tok")
	assert.Error(t, err)
	assert.Error(t, store.Revoke(context.Background(), "tok", time.Minute))
}
