package model

import (
	"errors"
	"fmt"
)

type SinceFlag string

var (
	SinceAbsolute SinceFlag = "Absolute"
	SinceRelative SinceFlag = "Relative"
)

type SinceType string

var (
	SinceBlockNumber SinceType = "BlockNumber"
	SinceEpochNumber SinceType = "EpochNumber"
	SinceTimestamp   SinceType = "Timestamp"
)

// SinceConfig describes an input time lock.
type SinceConfig struct {
	Flag  SinceFlag `json:"flag"`
	Type  SinceType `json:"type_"`
	Value uint64    `json:"value"`
}

const maxSinceValue = 0x00ff_ffff_ffff_ffff

// ErrInvalidSince is returned for since configs that cannot be encoded.
var ErrInvalidSince = errors.New("invalid since config")

// ToSince encodes the config into the u64 since field.
func ToSince(cfg SinceConfig) (uint64, error) {
	if cfg.Value > maxSinceValue {
		return 0, fmt.Errorf("since value %#x exceeds %#x: %w", cfg.Value, uint64(maxSinceValue), ErrInvalidSince)
	}

	var flag uint64
	switch {
	case cfg.Flag == SinceAbsolute && cfg.Type == SinceBlockNumber:
		flag = 0b0000_0000
	case cfg.Flag == SinceRelative && cfg.Type == SinceBlockNumber:
		flag = 0b1000_0000
	case cfg.Flag == SinceAbsolute && cfg.Type == SinceEpochNumber:
		flag = 0b0010_0000
	case cfg.Flag == SinceRelative && cfg.Type == SinceEpochNumber:
		flag = 0b1010_0000
	case cfg.Flag == SinceAbsolute && cfg.Type == SinceTimestamp:
		flag = 0b0100_0000
	case cfg.Flag == SinceRelative && cfg.Type == SinceTimestamp:
		flag = 0b1100_0000
	default:
		return 0, fmt.Errorf("flag %q with type %q: %w", cfg.Flag, cfg.Type, ErrInvalidSince)
	}

	return flag<<56 | cfg.Value, nil
}
