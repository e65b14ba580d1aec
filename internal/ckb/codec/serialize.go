package codec

import (
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// SerializeScript encodes a script table.
func SerializeScript(s model.Script) []byte {
	return table([][]byte{
		s.CodeHash[:],
		{byte(s.HashType)},
		bytesVec(s.Args),
	})
}

func serializeScriptOpt(s *model.Script) []byte {
	if s == nil {
		return nil
	}
	return SerializeScript(*s)
}

func SerializeOutPoint(o model.OutPoint) []byte {
	out := make([]byte, 0, 36)
	out = append(out, o.TxHash[:]...)
	return append(out, u32LE(o.Index)...)
}

func serializeCellInput(in model.CellInput) []byte {
	out := make([]byte, 0, 44)
	out = append(out, u64LE(in.Since)...)
	return append(out, SerializeOutPoint(in.PreviousOutput)...)
}

func serializeCellDep(dep model.CellDep) []byte {
	out := make([]byte, 0, 37)
	out = append(out, SerializeOutPoint(dep.OutPoint)...)
	return append(out, byte(dep.DepType))
}

// SerializeCellOutput encodes a cell output table.
func SerializeCellOutput(o model.CellOutput) []byte {
	return table([][]byte{
		u64LE(o.Capacity),
		SerializeScript(o.Lock),
		serializeScriptOpt(o.Type),
	})
}

// SerializeRawTransaction encodes the transaction without witnesses. Its hash is the transaction hash.
func SerializeRawTransaction(tx model.Transaction) []byte {
	deps := make([][]byte, len(tx.CellDeps))
	for i, d := range tx.CellDeps {
		deps[i] = serializeCellDep(d)
	}
	headers := make([][]byte, len(tx.HeaderDeps))
	for i := range tx.HeaderDeps {
		headers[i] = tx.HeaderDeps[i][:]
	}
	inputs := make([][]byte, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = serializeCellInput(in)
	}
	outputs := make([][]byte, len(tx.Outputs))
	for i, o := range tx.Outputs {
		outputs[i] = SerializeCellOutput(o)
	}
	data := make([][]byte, len(tx.OutputsData))
	for i, d := range tx.OutputsData {
		data[i] = bytesVec(d)
	}

	return table([][]byte{
		u32LE(tx.Version),
		fixVec(deps),
		fixVec(headers),
		fixVec(inputs),
		dynVec(outputs),
		dynVec(data),
	})
}

// SerializeTransaction encodes the full transaction including witnesses.
func SerializeTransaction(tx model.Transaction) []byte {
	witnesses := make([][]byte, len(tx.Witnesses))
	for i, w := range tx.Witnesses {
		witnesses[i] = bytesVec(w)
	}
	return table([][]byte{
		SerializeRawTransaction(tx),
		dynVec(witnesses),
	})
}

// SerializeWitnessArgs encodes a WitnessArgs table. Nil fields are absent.
func SerializeWitnessArgs(w model.WitnessArgs) []byte {
	return table([][]byte{
		option(bytesVec(w.Lock), w.Lock != nil),
		option(bytesVec(w.InputType), w.InputType != nil),
		option(bytesVec(w.OutputType), w.OutputType != nil),
	})
}

// TransactionSize is the size a transaction occupies in a block: its
// serialization plus the 4-byte offset in the block's transaction vector.
func TransactionSize(tx model.Transaction) uint64 {
	return uint64(len(SerializeTransaction(tx))) + 4
}
