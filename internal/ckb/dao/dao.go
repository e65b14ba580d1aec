// Package dao implements the Nervos DAO deposit economics: lock cycles,
// unlock epochs and the maximum withdrawable capacity.
package dao

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

const (
	// LockPeriodEpochs is the length of one deposit cycle.
	LockPeriodEpochs uint64 = 180
	// WithdrawingCellOccupiedCapacity is the capacity of a withdrawing cell that earns no interest.
	WithdrawingCellOccupiedCapacity = 102 * model.ByteShannons
	// DepositMaturityEpochs is how many epochs a deposit or withdrawing cell must age before it is used.
	DepositMaturityEpochs uint64 = 4
)

var (
	ErrOverflow    = errors.New("dao capacity overflow")
	ErrHeaderOrder = errors.New("deposit header must precede withdraw header")
)

// CycleCount returns how many full lock periods cover the span from deposit to withdraw.
// A span that is an exact multiple of the period yields exactly that multiple.
func CycleCount(deposit, withdraw *big.Rat) *big.Int {
	span := new(big.Rat).Sub(withdraw, deposit)
	if span.Sign() <= 0 {
		return new(big.Int)
	}
	cycles := span.Quo(span, new(big.Rat).SetUint64(LockPeriodEpochs))
	q, r := new(big.Int).QuoRem(cycles.Num(), cycles.Denom(), new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// UnlockEpoch returns the rational epoch at which a withdrawing cell may be claimed.
func UnlockEpoch(deposit, withdraw *big.Rat) *big.Rat {
	cycles := new(big.Rat).SetInt(CycleCount(deposit, withdraw))
	lock := cycles.Mul(cycles, new(big.Rat).SetUint64(LockPeriodEpochs))
	return lock.Add(lock, deposit)
}

// UnlockEpochNumber returns the packed unlock epoch, keeping the deposit's index and length.
func UnlockEpochNumber(deposit, withdraw model.EpochNumberWithFraction) model.EpochNumberWithFraction {
	cycles := CycleCount(deposit.Rational(), withdraw.Rational()).Uint64()
	return model.NewEpoch(deposit.Number()+cycles*LockPeriodEpochs, deposit.Index(), deposit.Length())
}

// IsWithdrawUnlocked reports whether tip has reached the unlock epoch.
func IsWithdrawUnlocked(deposit, withdraw, tip *big.Rat) bool {
	return tip.Cmp(UnlockEpoch(deposit, withdraw)) >= 0
}

// IsUnlock reports whether more than gap epochs separate from and end. A negative span counts as zero.
func IsUnlock(from, end, gap *big.Rat) bool {
	span := new(big.Rat).Sub(end, from)
	if span.Sign() < 0 {
		span.SetInt64(0)
	}
	return span.Cmp(gap) > 0
}

// IsUnlockEpochs is IsUnlock for packed epochs and a whole-epoch gap.
func IsUnlockEpochs(from, end model.EpochNumberWithFraction, gap uint64) bool {
	return IsUnlock(from.Rational(), end.Rational(), new(big.Rat).SetUint64(gap))
}

// IsMature reports whether a deposit or withdrawing cell has aged past DepositMaturityEpochs.
func IsMature(cellEpoch, tip model.EpochNumberWithFraction) bool {
	return cellEpoch.Number()+DepositMaturityEpochs < tip.Number()
}

// ExtractAccumulatedRate returns AR from a header's dao field.
func ExtractAccumulatedRate(dao model.Hash) uint64 {
	return binary.LittleEndian.Uint64(dao[8:16])
}

// MaximumWithdraw returns the capacity a deposited cell yields when withdrawn at withdrawHeader.
func MaximumWithdraw(capacity uint64, depositHeader, withdrawHeader model.Header) (uint64, error) {
	if depositHeader.Number >= withdrawHeader.Number {
		return 0, fmt.Errorf("deposit block %d, withdraw block %d: %w", depositHeader.Number, withdrawHeader.Number, ErrHeaderOrder)
	}

	depositAR := ExtractAccumulatedRate(depositHeader.Dao)
	withdrawAR := ExtractAccumulatedRate(withdrawHeader.Dao)
	if depositAR == 0 {
		return 0, fmt.Errorf("zero deposit accumulated rate: %w", ErrOverflow)
	}

	counted, err := safe.SubUint64(capacity, WithdrawingCellOccupiedCapacity)
	if err != nil {
		return 0, fmt.Errorf("counted capacity: %w", ErrOverflow)
	}

	v := new(big.Int).SetUint64(counted)
	v.Mul(v, new(big.Int).SetUint64(withdrawAR))
	v.Quo(v, new(big.Int).SetUint64(depositAR))
	withdrawCounted, err := safe.BigUint64(v)
	if err != nil {
		return 0, fmt.Errorf("withdraw counted capacity: %w", ErrOverflow)
	}

	total, err := safe.AddUint64(withdrawCounted, WithdrawingCellOccupiedCapacity)
	if err != nil {
		return 0, fmt.Errorf("withdraw capacity: %w", ErrOverflow)
	}
	return total, nil
}

// DepositData is the cell data that marks a deposit.
func DepositData() model.Bytes {
	return make(model.Bytes, 8)
}

// IsDepositData reports whether data marks a deposit cell.
func IsDepositData(data []byte) bool {
	return len(data) == 8 && binary.LittleEndian.Uint64(data) == 0
}

// WithdrawingData encodes the deposit block number carried by a withdrawing cell.
func WithdrawingData(depositBlockNumber uint64) model.Bytes {
	out := make(model.Bytes, 8)
	binary.LittleEndian.PutUint64(out, depositBlockNumber)
	return out
}

// DepositBlockNumber decodes withdrawing cell data. ok is false for deposit cells and malformed data.
func DepositBlockNumber(data []byte) (number uint64, ok bool) {
	if len(data) != 8 {
		return 0, false
	}
	number = binary.LittleEndian.Uint64(data)
	return number, number != 0
}
