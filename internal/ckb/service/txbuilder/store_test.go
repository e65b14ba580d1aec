package txbuilder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

const ckb = model.ByteShannons

// memStore is an in-memory RecordStore over a fixed set of live cells.
type memStore struct {
	mu      sync.Mutex
	cells   []model.Cell
	txs     map[model.Hash]*model.TransactionWithCells
	headers map[model.Hash]model.Header
	scripts []model.Script
	queries []model.CellQuery
}

func newMemStore() *memStore {
	return &memStore{
		txs:     map[model.Hash]*model.TransactionWithCells{},
		headers: map[model.Hash]model.Header{},
	}
}

func (s *memStore) addCell(cell model.Cell) model.Cell {
	s.cells = append(s.cells, cell)
	s.scripts = append(s.scripts, cell.Output.Lock)
	if cell.Output.Type != nil {
		s.scripts = append(s.scripts, *cell.Output.Type)
	}
	return cell
}

func (s *memStore) LiveCells(_ context.Context, q model.CellQuery) (model.CellPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)

	var matched []model.Cell
	for _, cell := range s.cells {
		if matchesQuery(cell, q) {
			matched = append(matched, cell)
		}
	}

	start := uint64(0)
	if q.Cursor != nil {
		start = *q.Cursor
	}
	if start > uint64(len(matched)) {
		start = uint64(len(matched))
	}
	end := uint64(len(matched))
	if q.Limit > 0 && start+uint64(q.Limit) < end {
		end = start + uint64(q.Limit)
	}
	page := model.CellPage{Cells: matched[start:end]}
	if end < uint64(len(matched)) {
		next := end
		page.NextCursor = &next
	}
	return page, nil
}

func matchesQuery(cell model.Cell, q model.CellQuery) bool {
	if !containsHash(q.LockHashes, codec.ScriptHash(cell.Output.Lock)) {
		return false
	}
	switch q.TypeFilter {
	case model.TypeNone:
		if cell.Output.Type != nil {
			return false
		}
	case model.TypeHashes:
		if cell.Output.Type == nil || !containsHash(q.TypeHashes, codec.ScriptHash(*cell.Output.Type)) {
			return false
		}
	}
	return q.OutPoint == nil || *q.OutPoint == cell.OutPoint
}

func containsHash(hashes []model.Hash, h model.Hash) bool {
	for _, x := range hashes {
		if x == h {
			return true
		}
	}
	return false
}

func (s *memStore) TransactionWithCells(_ context.Context, txHash model.Hash) (*model.TransactionWithCells, error) {
	tx, ok := s.txs[txHash]
	if !ok {
		return nil, chain.ErrNotFound
	}
	return tx, nil
}

func (s *memStore) BlockHeader(_ context.Context, q model.HeaderQuery) (model.Header, error) {
	if q.Hash != nil {
		if h, ok := s.headers[*q.Hash]; ok {
			return h, nil
		}
	}
	return model.Header{}, chain.ErrNotFound
}

func (s *memStore) ScriptByHash160(_ context.Context, hash160 [20]byte) (*model.Script, error) {
	for _, script := range s.scripts {
		if codec.ScriptHash(script).Hash160() == hash160 {
			found := script
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) Scripts(_ context.Context, q model.ScriptQuery) ([]model.Script, error) {
	var out []model.Script
	for _, script := range s.scripts {
		if script.CodeHash != q.CodeHash || len(script.Args) < q.ArgsOffset+len(q.Args) {
			continue
		}
		if bytes.Equal(script.Args[q.ArgsOffset:q.ArgsOffset+len(q.Args)], q.Args) {
			out = append(out, script)
		}
	}
	return out, nil
}

func (s *memStore) liveCellsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// cellCapacity returns the capacity of the stored cell at op.
func (s *memStore) cellCapacity(t *testing.T, op model.OutPoint) uint64 {
	t.Helper()
	for _, cell := range s.cells {
		if cell.OutPoint == op {
			return cell.Output.Capacity
		}
	}
	for _, tx := range s.txs {
		for _, cell := range tx.Outputs {
			if cell.OutPoint == op {
				return cell.Output.Capacity
			}
		}
	}
	t.Fatalf("unknown out point %s", op)
	return 0
}

var testRegistry = func() *chain.ScriptRegistry {
	reg, err := chain.NetworkScriptRegistry(model.Testnet)
	if err != nil {
		panic(err)
	}
	return reg
}()

func newTestBuilder(t *testing.T, store RecordStore) *Builder {
	t.Helper()
	ctrl := gomock.NewController(t)
	metrics := NewMockMetrics(ctrl)
	metrics.EXPECT().ObserveBuild(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().ObserveFeeIterations(gomock.Any(), gomock.Any()).AnyTimes()

	b, err := NewBuilder(store, testRegistry, metrics, Config{Network: model.Testnet}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func testSnapshot() chain.Snapshot {
	return chain.Snapshot{TipNumber: 100_000, TipEpoch: model.NewEpoch(1000, 0, 1)}
}

func pubkeyHash(seed byte) [20]byte {
	var h [20]byte
	for i := range h {
		h[i] = seed
	}
	return h
}

func builtin(t *testing.T, name string, args []byte) model.Script {
	t.Helper()
	s, ok := testRegistry.Script(name, args)
	if !ok {
		t.Fatalf("missing built-in %s", name)
	}
	return s
}

func secpLock(t *testing.T, seed byte) model.Script {
	h := pubkeyHash(seed)
	return builtin(t, model.ScriptSecp256k1, h[:])
}

func acpLock(t *testing.T, seed byte) model.Script {
	h := pubkeyHash(seed)
	return builtin(t, model.ScriptACP, h[:])
}

func identityItem(seed byte) model.Item {
	return model.ItemFromIdentity(model.NewIdentity(model.IdentityCkb, pubkeyHash(seed)))
}

func testAddress(t *testing.T, lock model.Script) string {
	t.Helper()
	b := &Builder{cfg: Config{Network: model.Testnet}}
	addr, err := b.encodeAddress(lock)
	if err != nil {
		t.Fatalf("encodeAddress() error = %v", err)
	}
	return addr
}

var outPointSeq uint32

func nextOutPoint() model.OutPoint {
	outPointSeq++
	var h model.Hash
	binary.BigEndian.PutUint32(h[28:], outPointSeq)
	return model.OutPoint{TxHash: h, Index: 0}
}

// plainCell is a spendable non-cellbase cell without type or data.
func plainCell(lock model.Script, capacity uint64) model.Cell {
	return model.Cell{
		OutPoint:    nextOutPoint(),
		Output:      model.CellOutput{Capacity: capacity, Lock: lock},
		Data:        model.Bytes{},
		BlockNumber: 10,
		TxIndex:     1,
		Epoch:       model.NewEpoch(10, 0, 1),
	}
}

func udtCell(t *testing.T, lock, udtType model.Script, capacity uint64, amount int64) model.Cell {
	t.Helper()
	data, err := model.EncodeUDTAmount(big.NewInt(amount))
	if err != nil {
		t.Fatalf("EncodeUDTAmount() error = %v", err)
	}
	typ := udtType
	cell := plainCell(lock, capacity)
	cell.Output.Type = &typ
	cell.Data = data
	return cell
}

func testHeader(number uint64, epoch model.EpochNumberWithFraction, ar uint64) model.Header {
	h := model.Header{Number: number, Epoch: epoch}
	binary.BigEndian.PutUint64(h.Hash[:8], number)
	h.Hash[31] = 0xbb
	binary.LittleEndian.PutUint64(h.Dao[8:16], ar)
	return h
}

func sumOutputs(tx model.Transaction) uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Capacity
	}
	return total
}

func sumInputs(t *testing.T, s *memStore, tx model.Transaction) uint64 {
	t.Helper()
	var total uint64
	for _, in := range tx.Inputs {
		total += s.cellCapacity(t, in.PreviousOutput)
	}
	return total
}

func assertNoDuplicateInputs(t *testing.T, tx model.Transaction) {
	t.Helper()
	seen := map[model.OutPoint]struct{}{}
	for _, in := range tx.Inputs {
		if _, dup := seen[in.PreviousOutput]; dup {
			t.Fatalf("duplicate input %s", in.PreviousOutput)
		}
		seen[in.PreviousOutput] = struct{}{}
	}
}

// assertFeeBounds checks the deducted fee covers the size fee by less than one CKB.
func assertFeeBounds(t *testing.T, completion *TransactionCompletion, rate uint64) {
	t.Helper()
	owed, err := feeForSize(codec.TransactionSize(completion.Tx), rate)
	if err != nil {
		t.Fatalf("feeForSize() error = %v", err)
	}
	if completion.Fee < owed || completion.Fee-owed >= ckb {
		t.Fatalf("fee %d, owed %d", completion.Fee, owed)
	}
}

func assertMinimumCapacity(t *testing.T, tx model.Transaction) {
	t.Helper()
	for i, out := range tx.Outputs {
		occupied, err := out.OccupiedCapacity(len(tx.OutputsData[i]))
		if err != nil {
			t.Fatalf("OccupiedCapacity() error = %v", err)
		}
		if out.Capacity < occupied {
			t.Fatalf("output %d capacity %d below occupied %d", i, out.Capacity, occupied)
		}
	}
}

func udtAmountOf(tx model.Transaction, idx int) string {
	return fmt.Sprint(model.UDTAmount(tx.OutputsData[idx]))
}
