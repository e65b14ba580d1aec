// Package audit records a summary row for every completed transaction build.
package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/service/txbuilder"
	"github.com/nervosnetwork/mercury-sub000/pkg/batcher"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type Repository interface {
	InsertBuildRecords(ctx context.Context, records []model.BuildRecord) error
}

const (
	DefaultBatchSize     = 500
	DefaultFlushInterval = 10 * time.Second
	defaultFlushRPS      = 2
)

type Recorder struct {
	network model.Network
	repo    Repository
	logger  *zap.Logger
	now     func() time.Time
	batch   *batcher.Batcher[model.BuildRecord]
}

func NewRecorder(repo Repository, network model.Network, logger *zap.Logger, size int, interval time.Duration) (*Recorder, error) {
	if repo == nil {
		return nil, errors.New("audit repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultBatchSize
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	r := &Recorder{
		network: network,
		repo:    repo,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	r.batch = batcher.New[model.BuildRecord](
		logger.Named("buildRecordBatcher"),
		r.flush,
		batcher.Config{Size: size, Interval: interval, RPS: defaultFlushRPS},
	)
	return r, nil
}

func (r *Recorder) Start(ctx context.Context) {
	r.batch.Start(ctx)
}

// Stop writes any queued records before returning.
func (r *Recorder) Stop() {
	r.batch.Stop()
}

// Record queues the summary of a finished build. A nil completion means the
// operation had nothing to do and is not recorded.
func (r *Recorder) Record(ctx context.Context, operation string, c *txbuilder.TransactionCompletion) error {
	if c == nil {
		return nil
	}
	return r.batch.Add(ctx, r.summarize(operation, c))
}

func (r *Recorder) summarize(operation string, c *txbuilder.TransactionCompletion) model.BuildRecord {
	return model.BuildRecord{
		Network:     r.network,
		TxHash:      codec.TransactionHash(c.Tx),
		Operation:   operation,
		Fee:         c.Fee,
		Size:        codec.TransactionSize(c.Tx),
		InputCount:  uint32(len(c.Tx.Inputs)),
		OutputCount: uint32(len(c.Tx.Outputs)),
		CreatedAt:   r.now(),
	}
}

func (r *Recorder) flush(ctx context.Context, records []model.BuildRecord) error {
	if err := r.repo.InsertBuildRecords(ctx, records); err != nil {
		return err
	}
	r.logger.Debug("InsertBuildRecords", zap.Int("count", len(records)))
	return nil
}
