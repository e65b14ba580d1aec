// Package chain defines the read-side ledger interfaces and the shared chain snapshot
// used while constructing transactions.
package chain

import (
	"context"
	"errors"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// ErrNotFound is returned by RecordStore lookups that match nothing.
var ErrNotFound = errors.New("not found")

type (
	// RecordStore is the read-only view of indexed ledger records.
	RecordStore interface {
		LiveCells(ctx context.Context, q model.CellQuery) (model.CellPage, error)
		TransactionWithCells(ctx context.Context, txHash model.Hash) (*model.TransactionWithCells, error)
		// SpentBy returns the hash of the consuming transaction or nil while the cell is live.
		SpentBy(ctx context.Context, outPoint model.OutPoint) (*model.Hash, error)
		BlockHeader(ctx context.Context, q model.HeaderQuery) (model.Header, error)
		// ScriptByHash160 returns nil when no script hash starts with the given prefix.
		ScriptByHash160(ctx context.Context, hash160 [20]byte) (*model.Script, error)
		Scripts(ctx context.Context, q model.ScriptQuery) ([]model.Script, error)
		TipHeader(ctx context.Context) (model.Header, error)
	}

	// ExclusionSource lists out-points already claimed by unconfirmed transactions.
	ExclusionSource interface {
		Excluded(ctx context.Context) (map[model.OutPoint]struct{}, error)
	}

	SnapshotRefresherMetrics interface {
		ObserveRefresh(err error, started time.Time)
		SetTip(number uint64)
		SetExcluded(count int)
	}
)
