package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// InsertBuildRecords stores finished build summaries.
func (r *Repository) InsertBuildRecords(ctx context.Context, records []model.BuildRecord) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_build_records", r.network, err, start)
	}()

	if len(records) == 0 {
		return nil
	}

	const query = `
INSERT INTO ckb_build_records (
	network,
	tx_hash,
	operation,
	fee,
	size,
	input_count,
	output_count,
	created_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare build records batch: %w", err)
	}

	for _, rec := range records {
		network := rec.Network
		if network == "" {
			network = r.network
		}
		if err = batch.Append(
			string(network),
			rec.TxHash.String(),
			rec.Operation,
			rec.Fee,
			rec.Size,
			rec.InputCount,
			rec.OutputCount,
			rec.CreatedAt,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append build record: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert build records: %w", err)
	}
	return nil
}
