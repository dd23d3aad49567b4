// Package watcher polls the deck file for edits so a running presentation
// can pick them up without a restart.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"deckview/internal/domain/ports"
)

// Poller watches a single deck file by polling. Polling beats inotify here:
// editors that write via rename-and-replace confuse kernel watches, and a
// deck is one small file.
type Poller struct {
	interval time.Duration
	debounce time.Duration

	mu       sync.Mutex
	size     int64
	modTime  time.Time
	checksum string
	missing  bool

	events  chan ports.FileChangeEvent
	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewPoller creates a poller with the given poll interval and debounce
// window. Zero values get sensible defaults.
func NewPoller(interval, debounce time.Duration) *Poller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if debounce < 0 {
		debounce = 0
	}
	return &Poller{
		interval: interval,
		debounce: debounce,
		events:   make(chan ports.FileChangeEvent, 8),
		stopCh:   make(chan struct{}),
	}
}

// Watch starts polling path and returns the change event channel. The
// channel closes when the watcher stops or the context is cancelled.
func (p *Poller) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := p.snapshot(absPath); err != nil {
		return nil, fmt.Errorf("initial scan of %s: %w", absPath, err)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx, absPath)
	}()

	return p.events, nil
}

// Stop halts polling and closes the event channel. Safe to call twice.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.events)
	return nil
}

func (p *Poller) loop(ctx context.Context, path string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastEvent time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			changeType, changed := p.check(path)
			if !changed || time.Since(lastEvent) < p.debounce {
				continue
			}
			event := ports.FileChangeEvent{
				Path:      path,
				Type:      changeType,
				Timestamp: time.Now(),
			}
			select {
			case p.events <- event:
				lastEvent = time.Now()
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			}
		}
	}
}

// snapshot records the file's current fingerprint.
func (p *Poller) snapshot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	sum, err := checksumFile(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.size = info.Size()
	p.modTime = info.ModTime()
	p.checksum = sum
	p.missing = false
	p.mu.Unlock()
	return nil
}

// check compares the file against the last fingerprint. Size and mtime gate
// the checksum so an unchanged file costs one stat per tick.
func (p *Poller) check(path string) (ports.ChangeType, bool) {
	info, err := os.Stat(path)
	if err != nil {
		p.mu.Lock()
		wasMissing := p.missing
		p.missing = true
		p.mu.Unlock()
		// Report a disappearance once, not every tick.
		return ports.Removed, !wasMissing
	}

	p.mu.Lock()
	sameShape := !p.missing && p.size == info.Size() && p.modTime.Equal(info.ModTime())
	oldSum := p.checksum
	p.mu.Unlock()

	if sameShape {
		return ports.Modified, false
	}

	sum, err := checksumFile(path)
	if err != nil {
		return ports.Modified, false
	}

	p.mu.Lock()
	p.size = info.Size()
	p.modTime = info.ModTime()
	p.checksum = sum
	p.missing = false
	p.mu.Unlock()

	return ports.Modified, sum != oldSum
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path is the operator's own deck file
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
