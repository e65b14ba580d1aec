// Package codec implements the molecule serialization and hashing of CKB structures.
package codec

import "encoding/binary"

func u32LE(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func u64LE(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

// bytesVec serializes a fixvec<byte>: item count followed by the bytes.
func bytesVec(b []byte) []byte {
	out := make([]byte, 0, 4+len(b))
	out = append(out, u32LE(uint32(len(b)))...)
	return append(out, b...)
}

// fixVec serializes fixed-size items with a leading item count.
func fixVec(items [][]byte) []byte {
	out := u32LE(uint32(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

// table serializes dynamically sized fields: total size, field offsets, then fields.
// dynvec shares the layout.
func table(fields [][]byte) []byte {
	header := 4 + 4*len(fields)
	total := header
	for _, f := range fields {
		total += len(f)
	}

	out := make([]byte, 0, total)
	out = append(out, u32LE(uint32(total))...)
	offset := header
	for _, f := range fields {
		out = append(out, u32LE(uint32(offset))...)
		offset += len(f)
	}
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

func dynVec(items [][]byte) []byte {
	return table(items)
}

// option serializes an absent value as zero bytes.
func option(b []byte, present bool) []byte {
	if !present {
		return nil
	}
	return b
}
