package model

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// EpochNumberWithFraction packs an epoch number (24 bits), an index (16 bits)
// and a length (16 bits) into one u64.
type EpochNumberWithFraction uint64

const (
	epochNumberBits  = 24
	epochIndexOffset = 24
	epochIndexBits   = 16
	epochLengthOff   = 40
	epochLengthBits  = 16
)

// NewEpoch packs the epoch components, truncating each to its field width.
func NewEpoch(number, index, length uint64) EpochNumberWithFraction {
	number &= 1<<epochNumberBits - 1
	index &= 1<<epochIndexBits - 1
	length &= 1<<epochLengthBits - 1
	return EpochNumberWithFraction(length<<epochLengthOff | index<<epochIndexOffset | number)
}

func (e EpochNumberWithFraction) Number() uint64 {
	return uint64(e) & (1<<epochNumberBits - 1)
}

func (e EpochNumberWithFraction) Index() uint64 {
	return uint64(e) >> epochIndexOffset & (1<<epochIndexBits - 1)
}

func (e EpochNumberWithFraction) Length() uint64 {
	return uint64(e) >> epochLengthOff & (1<<epochLengthBits - 1)
}

// FullValue returns the packed representation.
func (e EpochNumberWithFraction) FullValue() uint64 {
	return uint64(e)
}

// Rational returns number + index/length. A zero length is treated as a whole epoch.
func (e EpochNumberWithFraction) Rational() *big.Rat {
	r := new(big.Rat).SetInt(new(big.Int).SetUint64(e.Number()))
	if e.Length() == 0 {
		return r
	}
	frac := new(big.Rat).SetFrac(
		new(big.Int).SetUint64(e.Index()),
		new(big.Int).SetUint64(e.Length()),
	)
	return r.Add(r, frac)
}

func (e EpochNumberWithFraction) String() string {
	return fmt.Sprintf("%d(%d/%d)", e.Number(), e.Index(), e.Length())
}

func (e EpochNumberWithFraction) MarshalText() ([]byte, error) {
	return []byte("0x" + strconv.FormatUint(uint64(e), 16)), nil
}

func (e *EpochNumberWithFraction) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("epoch %q must be 0x-prefixed hex", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return fmt.Errorf("parse epoch: %w", err)
	}
	*e = EpochNumberWithFraction(v)
	return nil
}
