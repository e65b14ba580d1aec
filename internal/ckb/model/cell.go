// Package model defines the ledger and request types used to construct transactions.
package model

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// ScriptHashType selects how a script's code hash is matched against cell deps.
type ScriptHashType byte

const (
	HashTypeData  ScriptHashType = 0
	HashTypeType  ScriptHashType = 1
	HashTypeData1 ScriptHashType = 2
)

func (t ScriptHashType) String() string {
	switch t {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

func (t ScriptHashType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ScriptHashType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "data":
		*t = HashTypeData
	case "type":
		*t = HashTypeType
	case "data1":
		*t = HashTypeData1
	default:
		return fmt.Errorf("unknown script hash type %q", text)
	}
	return nil
}

// Script is a lock or type predicate.
type Script struct {
	CodeHash Hash           `json:"code_hash"`
	HashType ScriptHashType `json:"hash_type"`
	Args     Bytes          `json:"args"`
}

func (s Script) Equal(other Script) bool {
	return s.CodeHash == other.CodeHash && s.HashType == other.HashType && s.Args.Equal(other.Args)
}

// Key returns a comparable representation usable as a map key.
func (s Script) Key() string {
	return fmt.Sprintf("%s/%d/%x", s.CodeHash, s.HashType, []byte(s.Args))
}

// WithArgs returns a copy of the script with different args.
func (s Script) WithArgs(args []byte) Script {
	return Script{CodeHash: s.CodeHash, HashType: s.HashType, Args: append(Bytes(nil), args...)}
}

// OccupiedBytes is the number of bytes the script occupies in a cell.
func (s Script) OccupiedBytes() uint64 {
	return 32 + 1 + uint64(len(s.Args))
}

type OutPoint struct {
	TxHash Hash   `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash, o.Index)
}

type CellOutput struct {
	Capacity uint64  `json:"capacity"`
	Lock     Script  `json:"lock"`
	Type     *Script `json:"type,omitempty"`
}

// OccupiedCapacity returns the minimum capacity in shannons a cell with this
// output and dataLen bytes of data must carry.
func (o CellOutput) OccupiedCapacity(dataLen int) (uint64, error) {
	size := 8 + o.Lock.OccupiedBytes() + uint64(dataLen)
	if o.Type != nil {
		size += o.Type.OccupiedBytes()
	}
	return safe.MulUint64(size, ByteShannons)
}

// HasType reports whether the output carries a type script with the given code hash.
func (o CellOutput) HasType(codeHash Hash) bool {
	return o.Type != nil && o.Type.CodeHash == codeHash
}

// Cell is a live or historical record observed on chain.
type Cell struct {
	OutPoint    OutPoint                `json:"out_point"`
	Output      CellOutput              `json:"cell_output"`
	Data        Bytes                   `json:"data"`
	BlockNumber uint64                  `json:"block_number"`
	BlockHash   Hash                    `json:"block_hash"`
	TxIndex     uint32                  `json:"tx_index"`
	Epoch       EpochNumberWithFraction `json:"epoch_number"`
}

// OccupiedCapacity returns the minimum capacity the cell must carry.
func (c Cell) OccupiedCapacity() (uint64, error) {
	return c.Output.OccupiedCapacity(len(c.Data))
}

// UDTAmount decodes the u128 little-endian amount stored in the first 16 bytes of data.
// Data shorter than 16 bytes holds no amount.
func UDTAmount(data []byte) *big.Int {
	if len(data) < 16 {
		return new(big.Int)
	}
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = data[15-i]
	}
	return new(big.Int).SetBytes(be)
}

// EncodeUDTAmount encodes amount as u128 little-endian.
func EncodeUDTAmount(amount *big.Int) (Bytes, error) {
	v, err := safe.BigUint128(amount)
	if err != nil {
		return nil, fmt.Errorf("encode udt amount: %w", err)
	}
	be := v.FillBytes(make([]byte, 16))
	out := make(Bytes, 16)
	for i := 0; i < 16; i++ {
		out[i] = be[15-i]
	}
	return out, nil
}

// ReplaceUDTAmount rewrites the amount of existing sUDT data, keeping any trailing bytes.
func ReplaceUDTAmount(data []byte, amount *big.Int) (Bytes, error) {
	encoded, err := EncodeUDTAmount(amount)
	if err != nil {
		return nil, err
	}
	if len(data) > 16 {
		encoded = append(encoded, data[16:]...)
	}
	return encoded, nil
}

type DepType byte

const (
	DepTypeCode     DepType = 0
	DepTypeDepGroup DepType = 1
)

func (t DepType) MarshalText() ([]byte, error) {
	if t == DepTypeDepGroup {
		return []byte("dep_group"), nil
	}
	return []byte("code"), nil
}

func (t *DepType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "code":
		*t = DepTypeCode
	case "dep_group":
		*t = DepTypeDepGroup
	default:
		return fmt.Errorf("unknown dep type %q", text)
	}
	return nil
}

type CellDep struct {
	OutPoint OutPoint `json:"out_point"`
	DepType  DepType  `json:"dep_type"`
}

type CellInput struct {
	Since          uint64   `json:"since"`
	PreviousOutput OutPoint `json:"previous_output"`
}

// WitnessArgs is the structured witness. A nil field is serialized as absent.
type WitnessArgs struct {
	Lock       Bytes `json:"lock,omitempty"`
	InputType  Bytes `json:"input_type,omitempty"`
	OutputType Bytes `json:"output_type,omitempty"`
}

type Transaction struct {
	Version     uint32       `json:"version"`
	CellDeps    []CellDep    `json:"cell_deps"`
	HeaderDeps  []Hash       `json:"header_deps"`
	Inputs      []CellInput  `json:"inputs"`
	Outputs     []CellOutput `json:"outputs"`
	OutputsData []Bytes      `json:"outputs_data"`
	Witnesses   []Bytes      `json:"witnesses"`
}

// TransactionWithCells is a committed transaction with the cells it consumed and produced.
type TransactionWithCells struct {
	Hash        Hash   `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	BlockHash   Hash   `json:"block_hash"`
	Inputs      []Cell `json:"input_cells"`
	Outputs     []Cell `json:"output_cells"`
}

// Header carries the block header fields used for transaction construction.
type Header struct {
	Number    uint64                  `json:"number"`
	Hash      Hash                    `json:"hash"`
	Epoch     EpochNumberWithFraction `json:"epoch"`
	Dao       Hash                    `json:"dao"`
	Timestamp uint64                  `json:"timestamp"`
}

// AccumulatedRate extracts AR from the header's dao field.
func (h Header) AccumulatedRate() uint64 {
	return binary.LittleEndian.Uint64(h.Dao[8:16])
}
