package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain/entities"
)

func TestConnectionManager_RegisterAndBroadcast(t *testing.T) {
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cm.Run(ctx)

	conn := &Connection{ID: "c1", Send: make(chan entities.UpdateEvent, 4)}
	cm.RegisterConnection(conn)

	// Registration goes through the manager loop
	require.Eventually(t, func() bool { return cm.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	event := entities.UpdateEvent{Type: entities.EventSlideChanged, Timestamp: time.Now()}
	cm.Broadcast(event)

	select {
	case got := <-conn.Send:
		assert.Equal(t, entities.EventSlideChanged, got.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the connection")
	}
}

func TestConnectionManager_Unregister(t *testing.T) {
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cm.Run(ctx)

	conn := &Connection{ID: "c1", Send: make(chan entities.UpdateEvent, 4)}
	cm.RegisterConnection(conn)
	require.Eventually(t, func() bool { return cm.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cm.Unregister("c1")
	require.Eventually(t, func() bool { return cm.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	// Send channel is closed on unregister
	_, open := <-conn.Send
	assert.False(t, open)
}

func TestConnectionManager_SlowClientDropped(t *testing.T) {
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cm.Run(ctx)

	// Unbuffered send channel with no reader: the first broadcast drops it
	conn := &Connection{ID: "slow", Send: make(chan entities.UpdateEvent)}
	cm.RegisterConnection(conn)
	require.Eventually(t, func() bool { return cm.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cm.Broadcast(entities.UpdateEvent{Type: entities.EventTimerChanged})
	require.Eventually(t, func() bool { return cm.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestConnectionManager_CloseAll(t *testing.T) {
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cm.Run(ctx)

	for _, id := range []string{"a", "b", "c"} {
		cm.RegisterConnection(&Connection{ID: id, Send: make(chan entities.UpdateEvent, 1)})
	}
	require.Eventually(t, func() bool { return cm.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	cm.CloseAll()
	assert.Equal(t, 0, cm.ClientCount())
}

func TestConnectionManager_BroadcastAfterShutdown(t *testing.T) {
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Run(ctx)
	cancel()

	// Wait for the loop to observe cancellation
	require.Eventually(t, func() bool {
		select {
		case <-cm.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Must not block or panic
	for i := 0; i < 300; i++ {
		cm.Broadcast(entities.UpdateEvent{Type: entities.EventSlideChanged})
	}
}
