package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreExpiry(t *testing.T) {
	s := NewSessionStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "a", time.Minute))
	require.NoError(t, s.Revoke(ctx, "b", time.Hour))

	ok, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Sweep())
	ok, _ = s.IsRevoked(ctx, "b")
	assert.False(t, ok)
}
