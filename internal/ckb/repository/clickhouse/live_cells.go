package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

const (
	defaultCellPageSize = 100
	maxCellPageSize     = 1000
)

// LiveCells returns one page of unconsumed cells ordered by insertion id.
func (r *Repository) LiveCells(ctx context.Context, q model.CellQuery) (page model.CellPage, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("live_cells", r.network, err, start)
	}()

	if q.TypeFilter == model.TypeHashes && len(q.TypeHashes) == 0 {
		return model.CellPage{}, nil
	}

	query, args, limit := liveCellsQuery(r.network, q)
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return model.CellPage{}, fmt.Errorf("query live cells: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	var lastID uint64
	for rows.Next() {
		var row cellRow
		if err = rows.Scan(row.dest()...); err != nil {
			return model.CellPage{}, fmt.Errorf("scan live cell: %w", err)
		}
		cell, derr := row.cell()
		if derr != nil {
			return model.CellPage{}, fmt.Errorf("decode live cell %d: %w", row.ID, derr)
		}
		page.Cells = append(page.Cells, cell)
		lastID = row.ID
	}

	if err = rows.Err(); err != nil {
		return model.CellPage{}, fmt.Errorf("iterate live cells: %w", err)
	}

	if len(page.Cells) == limit {
		next := lastID
		page.NextCursor = &next
	}
	return page, nil
}

func liveCellsQuery(network model.Network, q model.CellQuery) (string, []any, int) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultCellPageSize
	}
	if limit > maxCellPageSize {
		limit = maxCellPageSize
	}

	var (
		b    strings.Builder
		args = []any{string(network), string(network)}
	)
	b.WriteString("\nSELECT\n")
	b.WriteString(cellColumns(""))
	b.WriteString(`
FROM ckb_cells FINAL
WHERE network = ?
	AND (tx_hash, output_index) NOT IN (
		SELECT tx_hash, output_index
		FROM ckb_consumed_cells
		WHERE network = ?
	)`)

	if len(q.LockHashes) > 0 {
		b.WriteString("\n\tAND lock_hash IN ?")
		args = append(args, hashStrings(q.LockHashes))
	}
	switch q.TypeFilter {
	case model.TypeNone:
		b.WriteString("\n\tAND type_hash = ''")
	case model.TypeHashes:
		b.WriteString("\n\tAND type_hash IN ?")
		args = append(args, hashStrings(q.TypeHashes))
	}
	if q.OutPoint != nil {
		b.WriteString("\n\tAND tx_hash = ? AND output_index = ?")
		args = append(args, q.OutPoint.TxHash.String(), q.OutPoint.Index)
	}
	if q.BlockRange != nil {
		b.WriteString("\n\tAND block_number >= ? AND block_number < ?")
		args = append(args, q.BlockRange.From, q.BlockRange.To)
	}
	if q.Cursor != nil {
		b.WriteString("\n\tAND id > ?")
		args = append(args, *q.Cursor)
	}
	b.WriteString("\nORDER BY id ASC\nLIMIT ?")
	args = append(args, limit)

	return b.String(), args, limit
}
