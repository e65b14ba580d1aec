package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// TransactionWithCells loads a committed transaction with the cells it consumed, in input
// order, and the cells it produced, in output order.
func (r *Repository) TransactionWithCells(ctx context.Context, txHash model.Hash) (tx *model.TransactionWithCells, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("transaction_with_cells", r.network, err, start)
	}()

	tx, err = r.transaction(ctx, txHash)
	if err != nil {
		return nil, err
	}

	inputsQuery := "\nSELECT\n" + cellColumns("c") + `
FROM ckb_cells AS c FINAL
INNER JOIN ckb_consumed_cells AS s FINAL
	ON c.network = s.network AND c.tx_hash = s.tx_hash AND c.output_index = s.output_index
WHERE s.network = ? AND s.consumed_tx_hash = ?
ORDER BY s.input_index ASC`
	if tx.Inputs, err = r.queryCells(ctx, "transaction inputs", inputsQuery, string(r.network), txHash.String()); err != nil {
		return nil, err
	}

	outputsQuery := "\nSELECT\n" + cellColumns("") + `
FROM ckb_cells FINAL
WHERE network = ? AND tx_hash = ?
ORDER BY output_index ASC`
	if tx.Outputs, err = r.queryCells(ctx, "transaction outputs", outputsQuery, string(r.network), txHash.String()); err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *Repository) transaction(ctx context.Context, txHash model.Hash) (tx *model.TransactionWithCells, err error) {
	const query = `
SELECT
	block_number,
	block_hash
FROM ckb_transactions FINAL
WHERE network = ? AND tx_hash = ?
LIMIT 1`

	rows, err := r.conn.Query(ctx, query, string(r.network), txHash.String())
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate transaction: %w", err)
		}
		return nil, fmt.Errorf("transaction %s: %w", txHash, chain.ErrNotFound)
	}

	var (
		blockNumber uint64
		blockHash   string
	)
	if err = rows.Scan(&blockNumber, &blockHash); err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	hash, err := model.HexToHash(blockHash)
	if err != nil {
		return nil, fmt.Errorf("transaction block hash: %w", err)
	}
	return &model.TransactionWithCells{Hash: txHash, BlockNumber: blockNumber, BlockHash: hash}, nil
}

func (r *Repository) queryCells(ctx context.Context, what, query string, args ...any) (cells []model.Cell, err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var row cellRow
		if err = rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		cell, derr := row.cell()
		if derr != nil {
			return nil, fmt.Errorf("decode %s: %w", what, derr)
		}
		cells = append(cells, cell)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return cells, nil
}
