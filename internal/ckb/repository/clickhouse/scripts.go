package clickhouse

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// ScriptByHash160 resolves a script from the first 20 bytes of its hash. It returns nil
// when no script was indexed under that prefix.
func (r *Repository) ScriptByHash160(ctx context.Context, hash160 [20]byte) (script *model.Script, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("script_by_hash160", r.network, err, start)
	}()

	const query = `
SELECT
	code_hash,
	hash_type,
	args
FROM ckb_scripts FINAL
WHERE network = ? AND script_hash160 = ?
LIMIT 1`

	scripts, err := r.queryScripts(ctx, query, string(r.network), "0x"+hex.EncodeToString(hash160[:]))
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		return nil, nil
	}
	return &scripts[0], nil
}

// Scripts lists scripts running codeHash whose args hold q.Args at q.ArgsOffset.
func (r *Repository) Scripts(ctx context.Context, q model.ScriptQuery) (scripts []model.Script, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("scripts", r.network, err, start)
	}()

	if q.ArgsOffset < 0 {
		return nil, fmt.Errorf("negative args offset %d", q.ArgsOffset)
	}

	query := `
SELECT
	code_hash,
	hash_type,
	args
FROM ckb_scripts FINAL
WHERE network = ? AND code_hash = ?`
	args := []any{string(r.network), q.CodeHash.String()}
	if len(q.Args) > 0 {
		// args is stored as 0x hex, substring positions are 1-based.
		query += "\n\tAND substring(args, ?, ?) = ?"
		args = append(args, 3+2*q.ArgsOffset, 2*len(q.Args), hex.EncodeToString(q.Args))
	}
	query += "\nORDER BY script_hash ASC"

	return r.queryScripts(ctx, query, args...)
}

func (r *Repository) queryScripts(ctx context.Context, query string, args ...any) (scripts []model.Script, err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scripts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var (
			codeHash string
			hashType uint8
			rawArgs  string
		)
		if err = rows.Scan(&codeHash, &hashType, &rawArgs); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		script, derr := decodeScript(codeHash, hashType, rawArgs)
		if derr != nil {
			return nil, fmt.Errorf("decode script: %w", derr)
		}
		scripts = append(scripts, script)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scripts: %w", err)
	}
	return scripts, nil
}
