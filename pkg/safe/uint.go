// Package safe provides helpers for safe numeric conversions and arithmetic with overflow checks.
package safe

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrOutOfRange is returned when a value does not fit the requested width.
var ErrOutOfRange = errors.New("value out of range")

// Uint32 converts signed or unsigned integers to uint32 with range validation.
func Uint32[T ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64](v T) (uint32, error) {
	switch value := any(v).(type) {
	case int:
		if value < 0 || int64(value) > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOutOfRange)
		}
	case int32:
		if value < 0 {
			return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOutOfRange)
		}
	case int64:
		if value < 0 || value > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOutOfRange)
		}
	case uint:
		if uint64(value) > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOutOfRange)
		}
	case uint32:
	case uint64:
		if value > math.MaxUint32 {
			return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOutOfRange)
		}
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	return uint32(v), nil
}

// Uint64 converts signed or unsigned integers to uint64 while guarding against negatives.
func Uint64[T ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64](v T) (uint64, error) {
	switch value := any(v).(type) {
	case int:
		if value < 0 {
			return 0, fmt.Errorf("value %d out of uint64 range: %w", v, ErrOutOfRange)
		}
		return uint64(value), nil
	case int32:
		if value < 0 {
			return 0, fmt.Errorf("value %d out of uint64 range: %w", v, ErrOutOfRange)
		}
		return uint64(value), nil
	case int64:
		if value < 0 {
			return 0, fmt.Errorf("value %d out of uint64 range: %w", v, ErrOutOfRange)
		}
		return uint64(value), nil
	case uint:
		return uint64(value), nil
	case uint32:
		return uint64(value), nil
	case uint64:
		return value, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// BigUint64 converts an arbitrary precision integer to uint64.
func BigUint64(v *big.Int) (uint64, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("value %v out of uint64 range: %w", v, ErrOutOfRange)
	}
	return v.Uint64(), nil
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// BigUint128 validates that v fits an unsigned 128-bit integer.
func BigUint128(v *big.Int) (*big.Int, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return nil, fmt.Errorf("value %v out of uint128 range: %w", v, ErrOutOfRange)
	}
	return new(big.Int).Set(v), nil
}
