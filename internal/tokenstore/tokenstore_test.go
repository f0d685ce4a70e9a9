package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWithoutAddrIsNoop(t *testing.T) {
	r, closeFn, err := Open(context.Background(), "", "", 0)
	require.NoError(t, err)
	defer closeFn()

	require.IsType(t, Noop{}, r)
	require.NoError(t, r.Revoke(context.Background(), "abc", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "auth:revoked:abc", key("abc"))
}

func TestRevokeSkipsExpired(t *testing.T) {
	// A nil client would panic if Revoke reached Redis.
	r := NewRedis(nil)
	assert.NoError(t, r.Revoke(context.Background(), "abc", time.Now().Add(-time.Second)))
}
