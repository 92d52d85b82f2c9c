package quote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardReleaseNeedsOwningToken(t *testing.T) {
	guard := NewMemoryGuard()
	ctx := context.Background()

	token, ok, err := guard.TryAcquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, guard.Release(ctx, "k", "someone-else"))
	_, ok, _ = guard.TryAcquire(ctx, "k")
	assert.False(t, ok, "foreign token must not release")

	require.NoError(t, guard.Release(ctx, "k", token))
	_, ok, _ = guard.TryAcquire(ctx, "k")
	assert.True(t, ok)
}
