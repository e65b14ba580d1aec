package safe

import (
	"fmt"
	"math"
	"math/bits"
)

// AddUint64 returns a+b or an error on overflow.
func AddUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%d + %d overflows uint64: %w", a, b, ErrOutOfRange)
	}
	return sum, nil
}

// SubUint64 returns a-b or an error on underflow.
func SubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%d - %d underflows uint64: %w", a, b, ErrOutOfRange)
	}
	return a - b, nil
}

// MulUint64 returns a*b or an error on overflow.
func MulUint64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%d * %d overflows uint64: %w", a, b, ErrOutOfRange)
	}
	return lo, nil
}

// SumUint64 adds all values with overflow checks.
func SumUint64(values ...uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		var err error
		if total, err = AddUint64(total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Int64 converts an unsigned value to int64 with range validation.
func Int64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range: %w", v, ErrOutOfRange)
	}
	return int64(v), nil
}
