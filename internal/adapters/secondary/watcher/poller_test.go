package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain/ports"
)

func writeDeck(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPoller_DetectsContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	writeDeck(t, path, `[{"layout": "Title Slide"}]`)

	p := NewPoller(10*time.Millisecond, 0)
	defer func() { _ = p.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := p.Watch(ctx, path)
	require.NoError(t, err)

	writeDeck(t, path, `[{"layout": "Title Slide"}, {"layout": "Quote / Key Message Slide"}]`)

	select {
	case evt := <-events:
		assert.Equal(t, ports.Modified, evt.Type)
		assert.True(t, filepath.IsAbs(evt.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("change never reported")
	}
}

func TestPoller_IgnoresTouchWithoutContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	writeDeck(t, path, `[]`)

	p := NewPoller(10*time.Millisecond, 0)
	defer func() { _ = p.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := p.Watch(ctx, path)
	require.NoError(t, err)

	// Same bytes, new mtime
	now := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, now, now))

	select {
	case evt := <-events:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPoller_ReportsRemovalOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	writeDeck(t, path, `[]`)

	p := NewPoller(10*time.Millisecond, 0)
	defer func() { _ = p.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := p.Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	select {
	case evt := <-events:
		assert.Equal(t, ports.Removed, evt.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("removal never reported")
	}

	// The file is still gone; no repeat events
	select {
	case evt := <-events:
		t.Fatalf("duplicate removal event: %+v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPoller_WatchMissingFile(t *testing.T) {
	p := NewPoller(10*time.Millisecond, 0)
	_, err := p.Watch(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestPoller_StopClosesChannel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	writeDeck(t, path, `[]`)

	p := NewPoller(10*time.Millisecond, 0)
	events, err := p.Watch(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop(), "second stop is a no-op")

	_, open := <-events
	assert.False(t, open)
}
