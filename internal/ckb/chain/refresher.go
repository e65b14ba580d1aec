package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/internal/clock"
)

const (
	defaultRefreshInterval = 3 * time.Second
	maxRefreshBackoff      = time.Minute
)

// SnapshotRefresher periodically rebuilds the chain snapshot from the store tip and
// the exclusion source. A failed refresh keeps the previous snapshot.
type SnapshotRefresher struct {
	store     RecordStore
	exclusion ExclusionSource
	snapshots *SnapshotStore
	metrics   SnapshotRefresherMetrics
	logger    *zap.Logger
	interval  time.Duration
	backoff   clock.Backoff
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
}

func NewSnapshotRefresher(
	store RecordStore,
	exclusion ExclusionSource,
	snapshots *SnapshotStore,
	metrics SnapshotRefresherMetrics,
	interval time.Duration,
	logger *zap.Logger,
) (*SnapshotRefresher, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	if metrics == nil {
		return nil, errors.New("snapshot refresher metrics is required")
	}
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &SnapshotRefresher{
		store:     store,
		exclusion: exclusion,
		snapshots: snapshots,
		metrics:   metrics,
		logger:    logger.Named("snapshotRefresher"),
		interval:  interval,
		backoff:   clock.Backoff{Base: interval, Max: maxRefreshBackoff},
		sleep:     clock.SleepWithContext,
		now:       time.Now,
	}, nil
}

// Run refreshes until ctx is canceled. Consecutive failures back off up to a minute.
func (r *SnapshotRefresher) Run(ctx context.Context) error {
	for {
		wait := r.interval
		if err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait = r.backoff.Next()
			r.logger.Error("refresh snapshot failed, keeping previous", zap.Duration("retry_in", wait), zap.Error(err))
		} else {
			r.backoff.Reset()
		}
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Refresh builds and publishes one snapshot.
func (r *SnapshotRefresher) Refresh(ctx context.Context) (err error) {
	started := r.now()
	defer func() { r.metrics.ObserveRefresh(err, started) }()

	tip, err := r.store.TipHeader(ctx)
	if err != nil {
		return fmt.Errorf("load tip header: %w", err)
	}

	excluded := map[model.OutPoint]struct{}{}
	if r.exclusion != nil {
		excluded, err = r.exclusion.Excluded(ctx)
		if err != nil {
			return fmt.Errorf("load exclusion set: %w", err)
		}
	}

	r.snapshots.Store(Snapshot{
		TipNumber:   tip.Number,
		TipHash:     tip.Hash,
		TipEpoch:    tip.Epoch,
		Excluded:    excluded,
		RefreshedAt: started,
	})
	r.metrics.SetTip(tip.Number)
	r.metrics.SetExcluded(len(excluded))
	r.logger.Debug("snapshot refreshed",
		zap.Uint64("tip", tip.Number),
		zap.Stringer("epoch", tip.Epoch),
		zap.Int("excluded", len(excluded)),
	)
	return nil
}
