package txbuilder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// buildFunc fills a fresh draft whose fee is fixed to the current estimate.
type buildFunc func(ctx context.Context, d *draft) error

func (b *Builder) feeRate(requested *uint64) uint64 {
	if requested != nil {
		return *requested
	}
	return b.cfg.FeeRate
}

// feeForSize returns ceil(rate * size / 1000).
func feeForSize(size, rate uint64) (uint64, error) {
	product, err := safe.MulUint64(size, rate)
	if err != nil {
		return 0, fmt.Errorf("fee for %d bytes: %w", size, err)
	}
	fee := product / 1000
	if product%1000 != 0 {
		fee++
	}
	return fee, nil
}

// buildWithFee rebuilds from scratch, raising the fee estimate by one CKB until it
// covers the fee owed for the finished size, then returns the unused part of the
// estimate to the fee change output.
func (b *Builder) buildWithFee(ctx context.Context, operation string, rate uint64, build buildFunc) (*TransactionCompletion, error) {
	estimate := InitEstimateFee
	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := newDraft(estimate)
		if err := build(ctx, d); err != nil {
			return nil, err
		}
		completion, err := b.complete(d)
		if err != nil {
			return nil, err
		}

		size := codec.TransactionSize(completion.Tx)
		owed, err := feeForSize(size, rate)
		if err != nil {
			return nil, err
		}
		if owed > estimate {
			b.logger.Debug("fee estimate too low, rebuilding",
				zap.String("operation", operation),
				zap.Int("iteration", iteration),
				zap.Uint64("estimate", estimate),
				zap.Uint64("owed", owed),
				zap.Uint64("size", size),
			)
			if estimate, err = safe.AddUint64(estimate, FeeEstimateStep); err != nil {
				return nil, err
			}
			continue
		}

		if d.feeChangeIndex == nil || *d.feeChangeIndex >= len(completion.Tx.Outputs) {
			return nil, ErrInvalidFeeChange
		}
		out := &completion.Tx.Outputs[*d.feeChangeIndex]
		if err := addCapacity(out, estimate-owed); err != nil {
			return nil, err
		}
		completion.Fee = owed

		b.metrics.ObserveFeeIterations(operation, iteration)
		b.logger.Info("transaction built",
			zap.String("operation", operation),
			zap.Int("inputs", len(completion.Tx.Inputs)),
			zap.Int("outputs", len(completion.Tx.Outputs)),
			zap.Uint64("fee", owed),
			zap.Uint64("size", size),
			zap.Int("iterations", iteration),
		)
		return completion, nil
	}
}
