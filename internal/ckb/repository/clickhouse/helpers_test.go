package clickhouse

import (
	"strings"

	"github.com/golang/mock/gomock"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

var (
	testNetwork  = model.Testnet
	testTxHash   = model.MustHexToHash("0x" + strings.Repeat("11", 32))
	testBlock    = model.MustHexToHash("0x" + strings.Repeat("22", 32))
	testCodeHash = model.MustHexToHash("0x" + strings.Repeat("33", 32))
	testTypeHash = model.MustHexToHash("0x" + strings.Repeat("44", 32))
	testLockHash = model.MustHexToHash("0x" + strings.Repeat("55", 32))
)

func anyArgs(n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = gomock.Any()
	}
	return out
}

func newCellRow(id uint64, index uint32, withType bool) cellRow {
	row := cellRow{
		ID:           id,
		TxHash:       testTxHash.String(),
		OutputIndex:  index,
		BlockNumber:  10,
		BlockHash:    testBlock.String(),
		TxIndex:      1,
		Epoch:        uint64(model.NewEpoch(5, 1, 10)),
		Capacity:     100 * model.ByteShannons,
		LockCodeHash: testCodeHash.String(),
		LockHashType: uint8(model.HashTypeType),
		LockArgs:     "0x" + strings.Repeat("aa", 20),
		Data:         "0x",
	}
	if withType {
		row.TypeCodeHash = testCodeHash.String()
		row.TypeHashType = uint8(model.HashTypeData1)
		row.TypeArgs = "0x01"
		row.Data = "0x" + strings.Repeat("00", 16)
	}
	return row
}

func fillCellRow(dest []any, row cellRow) {
	*dest[0].(*uint64) = row.ID
	*dest[1].(*string) = row.TxHash
	*dest[2].(*uint32) = row.OutputIndex
	*dest[3].(*uint64) = row.BlockNumber
	*dest[4].(*string) = row.BlockHash
	*dest[5].(*uint32) = row.TxIndex
	*dest[6].(*uint64) = row.Epoch
	*dest[7].(*uint64) = row.Capacity
	*dest[8].(*string) = row.LockCodeHash
	*dest[9].(*uint8) = row.LockHashType
	*dest[10].(*string) = row.LockArgs
	*dest[11].(*string) = row.TypeCodeHash
	*dest[12].(*uint8) = row.TypeHashType
	*dest[13].(*string) = row.TypeArgs
	*dest[14].(*string) = row.Data
}

func mustCell(row cellRow) model.Cell {
	cell, err := row.cell()
	if err != nil {
		panic(err)
	}
	return cell
}
