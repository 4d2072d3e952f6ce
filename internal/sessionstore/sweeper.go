package sessionstore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically purges expired sessions and codes.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewSweeper prepares a sweeper; call Start to run it.
func NewSweeper(store *Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger.With("component", "session_sweeper"),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in the background.
func (sw *Sweeper) Start(ctx context.Context) {
	ctx, sw.cancel = context.WithCancel(ctx)
	go sw.loop(ctx)
}

// Stop ends the loop and waits for it to exit. It is safe to call more than once.
func (sw *Sweeper) Stop() {
	sw.once.Do(func() {
		if sw.cancel == nil {
			close(sw.done)
			return
		}
		sw.cancel()
		<-sw.done
	})
}

func (sw *Sweeper) loop(ctx context.Context) {
	defer close(sw.done)
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.sweep(ctx)
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	removed, err := sw.store.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			sw.logger.Error("purge expired sessions failed", "error", err)
		}
		return
	}
	if removed > 0 {
		sw.logger.Debug("purged expired sessions and codes", "removed", removed)
	}
}
