// Tests use testcontainers-go to spin up a Redis container and are
// skipped when Docker is not available.
package session

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type testSession struct {
	Username string `json:"username"`
	Bet      int64  `json:"bet"`
	Moves    int    `json:"moves"`
}

func setupStore(t *testing.T) *Store {
	if exec.Command("docker", "info").Run() != nil {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	// ConnectionString returns a redis:// URL; Connect wants host:port.
	addr = addr[len("redis://"):]

	client, err := Connect(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client)
}

func TestStore_Lifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	var loaded testSession
	found, err := store.Get(ctx, "mines", "alice", &loaded)
	require.NoError(t, err)
	assert.False(t, found)

	sess := &testSession{Username: "alice", Bet: 100}
	require.NoError(t, store.Save(ctx, "mines", "alice", sess))

	found, err = store.Get(ctx, "mines", "alice", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *sess, loaded)

	sess.Moves = 3
	require.NoError(t, store.Update(ctx, "mines", "alice", sess))
	_, err = store.Get(ctx, "mines", "alice", &loaded)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Moves)

	require.NoError(t, store.Delete(ctx, "mines", "alice"))
	found, err = store.Get(ctx, "mines", "alice", &loaded)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_OneActiveSessionPerUserAndGame(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "mines", "alice", &testSession{Username: "alice"}))

	// A second save for the same (game, user) is rejected.
	err := store.Save(ctx, "mines", "alice", &testSession{Username: "alice"})
	assert.ErrorIs(t, err, ErrSessionExists)

	// Other games and other users are independent.
	require.NoError(t, store.Save(ctx, "blackjack", "alice", &testSession{Username: "alice"}))
	require.NoError(t, store.Save(ctx, "mines", "bob", &testSession{Username: "bob"}))
}

func TestStore_UpdateRequiresActiveSession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.Update(ctx, "mines", "alice", &testSession{Username: "alice"})
	assert.ErrorIs(t, err, ErrNoSession)
}
