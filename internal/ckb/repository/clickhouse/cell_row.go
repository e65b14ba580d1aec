package clickhouse

import (
	"fmt"
	"strings"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

var cellColumnNames = []string{
	"id",
	"tx_hash",
	"output_index",
	"block_number",
	"block_hash",
	"tx_index",
	"epoch",
	"capacity",
	"lock_code_hash",
	"lock_hash_type",
	"lock_args",
	"type_code_hash",
	"type_hash_type",
	"type_args",
	"data",
}

// cellColumns renders the cell column list, qualified with alias when set.
func cellColumns(alias string) string {
	cols := make([]string, len(cellColumnNames))
	for i, name := range cellColumnNames {
		if alias != "" {
			name = alias + "." + name
		}
		cols[i] = "\t" + name
	}
	return strings.Join(cols, ",\n")
}

// cellRow mirrors one ckb_cells row as stored.
type cellRow struct {
	ID           uint64
	TxHash       string
	OutputIndex  uint32
	BlockNumber  uint64
	BlockHash    string
	TxIndex      uint32
	Epoch        uint64
	Capacity     uint64
	LockCodeHash string
	LockHashType uint8
	LockArgs     string
	TypeCodeHash string
	TypeHashType uint8
	TypeArgs     string
	Data         string
}

func (r *cellRow) dest() []any {
	return []any{
		&r.ID,
		&r.TxHash,
		&r.OutputIndex,
		&r.BlockNumber,
		&r.BlockHash,
		&r.TxIndex,
		&r.Epoch,
		&r.Capacity,
		&r.LockCodeHash,
		&r.LockHashType,
		&r.LockArgs,
		&r.TypeCodeHash,
		&r.TypeHashType,
		&r.TypeArgs,
		&r.Data,
	}
}

func (r cellRow) cell() (model.Cell, error) {
	txHash, err := model.HexToHash(r.TxHash)
	if err != nil {
		return model.Cell{}, fmt.Errorf("cell tx hash: %w", err)
	}
	blockHash, err := model.HexToHash(r.BlockHash)
	if err != nil {
		return model.Cell{}, fmt.Errorf("cell block hash: %w", err)
	}
	lock, err := decodeScript(r.LockCodeHash, r.LockHashType, r.LockArgs)
	if err != nil {
		return model.Cell{}, fmt.Errorf("cell lock: %w", err)
	}
	data, err := model.HexToBytes(r.Data)
	if err != nil {
		return model.Cell{}, fmt.Errorf("cell data: %w", err)
	}

	cell := model.Cell{
		OutPoint: model.OutPoint{TxHash: txHash, Index: r.OutputIndex},
		Output: model.CellOutput{
			Capacity: r.Capacity,
			Lock:     lock,
		},
		Data:        data,
		BlockNumber: r.BlockNumber,
		BlockHash:   blockHash,
		TxIndex:     r.TxIndex,
		Epoch:       model.EpochNumberWithFraction(r.Epoch),
	}
	if r.TypeCodeHash != "" {
		typ, err := decodeScript(r.TypeCodeHash, r.TypeHashType, r.TypeArgs)
		if err != nil {
			return model.Cell{}, fmt.Errorf("cell type: %w", err)
		}
		cell.Output.Type = &typ
	}
	return cell, nil
}

func decodeScript(codeHash string, hashType uint8, args string) (model.Script, error) {
	hash, err := model.HexToHash(codeHash)
	if err != nil {
		return model.Script{}, fmt.Errorf("code hash: %w", err)
	}
	rawArgs, err := model.HexToBytes(args)
	if err != nil {
		return model.Script{}, fmt.Errorf("args: %w", err)
	}
	return model.Script{CodeHash: hash, HashType: model.ScriptHashType(hashType), Args: rawArgs}, nil
}

func hashStrings(hashes []model.Hash) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.String()
	}
	return out
}
