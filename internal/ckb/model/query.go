package model

// TypeFilter restricts live cell queries by type script.
type TypeFilter int

const (
	// TypeAny matches cells with or without a type script.
	TypeAny TypeFilter = iota
	// TypeNone matches cells without a type script.
	TypeNone
	// TypeHashes matches cells whose type script hash is in CellQuery.TypeHashes.
	TypeHashes
)

type BlockRange struct {
	From uint64
	To   uint64
}

// CellQuery selects live cells. A nil Cursor starts from the beginning.
type CellQuery struct {
	LockHashes []Hash
	TypeFilter TypeFilter
	TypeHashes []Hash
	OutPoint   *OutPoint
	BlockRange *BlockRange
	Cursor     *uint64
	Limit      int
}

// CellPage is one page of live cells. NextCursor is nil once the result set is drained.
type CellPage struct {
	Cells      []Cell
	NextCursor *uint64
}

// HeaderQuery selects a block header by hash or by number.
type HeaderQuery struct {
	Hash   *Hash
	Number *uint64
}

func HeaderByHash(h Hash) HeaderQuery {
	return HeaderQuery{Hash: &h}
}

func HeaderByNumber(n uint64) HeaderQuery {
	return HeaderQuery{Number: &n}
}

// ScriptQuery finds scripts with the given code hash whose args contain
// Args at ArgsOffset.
type ScriptQuery struct {
	CodeHash   Hash
	Args       []byte
	ArgsOffset int
}
