package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// SpentBy returns the hash of the transaction consuming outPoint, or nil while it is live.
func (r *Repository) SpentBy(ctx context.Context, outPoint model.OutPoint) (spender *model.Hash, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("spent_by", r.network, err, start)
	}()

	const query = `
SELECT consumed_tx_hash
FROM ckb_consumed_cells FINAL
WHERE network = ? AND tx_hash = ? AND output_index = ?
LIMIT 1`

	rows, err := r.conn.Query(ctx, query, string(r.network), outPoint.TxHash.String(), outPoint.Index)
	if err != nil {
		return nil, fmt.Errorf("query spent by: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	if rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan spent by: %w", err)
		}
		hash, herr := model.HexToHash(raw)
		if herr != nil {
			return nil, fmt.Errorf("spent by hash: %w", herr)
		}
		spender = &hash
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spent by: %w", err)
	}
	return spender, nil
}
