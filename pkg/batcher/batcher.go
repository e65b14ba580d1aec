// Package batcher buffers items in memory and hands them to a flush callback in
// bounded batches.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ErrStopped is returned by Add once Stop has been called.
var ErrStopped = errors.New("batcher stopped")

// Config controls when a batch is flushed.
type Config struct {
	// Size is the maximum batch length; reaching it flushes immediately.
	Size int
	// Interval flushes a partial batch after it has been waiting this long.
	Interval time.Duration
	// RPS caps flush calls per second. Zero means unlimited.
	RPS int
}

// Batcher buffers items and flushes them either by size or interval.
type Batcher[T any] struct {
	flush  func(context.Context, []T) error
	items  chan T
	cfg    Config
	rl     ratelimit.Limiter
	logger *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, cfg Config) *Batcher[T] {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	rl := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		rl = ratelimit.New(cfg.RPS)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batcher[T]{
		logger: logger,
		flush:  flush,
		items:  make(chan T, cfg.Size*2),
		cfg:    cfg,
		rl:     rl,
		stop:   make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is done or Stop is called.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes everything already queued and waits for the loop to exit.
// It is safe to call more than once.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
}

// Add queues an item. It blocks while the queue is full.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case b.items <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	buf := make([]T, 0, b.cfg.Size)
	send := func(flushCtx context.Context) {
		if len(buf) == 0 {
			return
		}
		b.rl.Take()
		batch := make([]T, len(buf))
		copy(batch, buf)
		buf = buf[:0]
		if err := b.flush(flushCtx, batch); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(batch)), zap.Error(err))
			return
		}
		b.logger.Debug("batch flushed", zap.Int("size", len(batch)))
	}

	// drain empties the queue on shutdown. The caller's context may already be
	// cancelled, so the last batches are written without it.
	drain := func() {
		flushCtx := context.WithoutCancel(ctx)
		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
				if len(buf) >= b.cfg.Size {
					send(flushCtx)
				}
			default:
				send(flushCtx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return
		case <-b.stop:
			drain()
			return
		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.cfg.Size {
				send(ctx)
			}
		case <-ticker.C:
			send(ctx)
		}
	}
}
