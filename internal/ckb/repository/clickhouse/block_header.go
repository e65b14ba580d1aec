package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

const headerColumns = `
	number,
	hash,
	epoch,
	dao,
	timestamp`

// BlockHeader looks a header up by hash, or by number when no hash is given.
func (r *Repository) BlockHeader(ctx context.Context, q model.HeaderQuery) (header model.Header, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("block_header", r.network, err, start)
	}()

	var (
		query string
		arg   any
	)
	switch {
	case q.Hash != nil:
		query = "\nSELECT" + headerColumns + `
FROM ckb_headers FINAL
WHERE network = ? AND hash = ?
LIMIT 1`
		arg = q.Hash.String()
	case q.Number != nil:
		query = "\nSELECT" + headerColumns + `
FROM ckb_headers FINAL
WHERE network = ? AND number = ?
LIMIT 1`
		arg = *q.Number
	default:
		return model.Header{}, errors.New("header query needs a hash or a number")
	}

	return r.queryHeader(ctx, "block header", query, string(r.network), arg)
}

// TipHeader returns the highest indexed header.
func (r *Repository) TipHeader(ctx context.Context) (header model.Header, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("tip_header", r.network, err, start)
	}()

	query := "\nSELECT" + headerColumns + `
FROM ckb_headers FINAL
WHERE network = ?
ORDER BY number DESC
LIMIT 1`

	return r.queryHeader(ctx, "tip header", query, string(r.network))
}

func (r *Repository) queryHeader(ctx context.Context, what, query string, args ...any) (header model.Header, err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return model.Header{}, fmt.Errorf("query %s: %w", what, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.Header{}, fmt.Errorf("iterate %s: %w", what, err)
		}
		return model.Header{}, fmt.Errorf("%s: %w", what, chain.ErrNotFound)
	}

	var (
		hash  string
		epoch uint64
		dao   string
	)
	if err = rows.Scan(&header.Number, &hash, &epoch, &dao, &header.Timestamp); err != nil {
		return model.Header{}, fmt.Errorf("scan %s: %w", what, err)
	}
	if header.Hash, err = model.HexToHash(hash); err != nil {
		return model.Header{}, fmt.Errorf("%s hash: %w", what, err)
	}
	if header.Dao, err = model.HexToHash(dao); err != nil {
		return model.Header{}, fmt.Errorf("%s dao: %w", what, err)
	}
	header.Epoch = model.EpochNumberWithFraction(epoch)
	return header, nil
}
