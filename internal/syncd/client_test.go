package syncd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/database"
)

// TestClientDaemonRoundTrip exercises the full wire protocol: a client
// frames messages over TCP, the daemon acks and persists them.
func TestClientDaemonRoundTrip(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.SyncConfig{
		ListenAddr:    "127.0.0.1:0",
		BatchSize:     10,
		FlushInterval: 20 * time.Millisecond,
	}
	d := NewDaemonSyncer(cfg, store, zap.NewNop())
	require.NoError(t, d.Start(context.Background()))

	client, err := Dial(d.Addr(), 2*time.Second)
	require.NoError(t, err)

	// A journaled batch is durable once acked.
	batch := &BatchMessage{
		Dives: []*database.Dive{testDive("dive-rt-1"), testDive("dive-rt-2")},
	}
	require.NoError(t, client.SendBatch(batch))

	got, err := store.GetDive("dive-rt-1")
	require.NoError(t, err)
	assert.Equal(t, "marin", got.Diver)

	// Single dives flow through the flush loop.
	require.NoError(t, client.SendDive(testDive("dive-rt-3")))
	require.Eventually(t, func() bool {
		_, err := store.GetDive("dive-rt-3")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.Close())
	require.NoError(t, d.Stop())

	m := d.Metrics()
	assert.Equal(t, int64(3), m.DivesIngested)
	assert.Zero(t, m.ErrorCount)
}
