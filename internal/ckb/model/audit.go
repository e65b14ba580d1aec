package model

import "time"

// BuildRecord summarizes one finished transaction build.
type BuildRecord struct {
	Network     Network
	TxHash      Hash
	Operation   string
	Fee         uint64
	Size        uint64
	InputCount  uint32
	OutputCount uint32
	CreatedAt   time.Time
}
