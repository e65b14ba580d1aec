package model

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Hash is a 32-byte blake2b digest.
type Hash [32]byte

// Bytes is a byte slice rendered as 0x-prefixed hex in JSON.
type Bytes []byte

// HexToHash parses a 0x-prefixed 32-byte hex string.
func HexToHash(s string) (Hash, error) {
	var h Hash
	raw, err := decodeHex(s)
	if err != nil {
		return h, err
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("hash must be %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// MustHexToHash is HexToHash for constants known to be valid.
func MustHexToHash(s string) Hash {
	h, err := HexToHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Hash160 returns the first 20 bytes of the hash.
func (h Hash) Hash160() [20]byte {
	var out [20]byte
	copy(out[:], h[:20])
	return out
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HexToHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b Bytes) Equal(other Bytes) bool {
	return bytes.Equal(b, other)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes) UnmarshalText(text []byte) error {
	raw, err := decodeHex(string(text))
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// HexToBytes parses a 0x-prefixed hex string.
func HexToBytes(s string) (Bytes, error) {
	return decodeHex(s)
}

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, errors.New("hex string must start with 0x")
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return raw, nil
}
