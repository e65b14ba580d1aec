package chain

import (
	"sync/atomic"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// Snapshot is an immutable view of the chain tip and the exclusion set. Builds
// receive it by value and never observe a refresh mid-build.
type Snapshot struct {
	TipNumber   uint64
	TipHash     model.Hash
	TipEpoch    model.EpochNumberWithFraction
	Excluded    map[model.OutPoint]struct{}
	RefreshedAt time.Time
}

func (s Snapshot) IsExcluded(op model.OutPoint) bool {
	_, ok := s.Excluded[op]
	return ok
}

// SnapshotStore publishes snapshots to concurrent readers.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

func (s *SnapshotStore) Store(snapshot Snapshot) {
	s.current.Store(&snapshot)
}

// Load returns the latest snapshot. ok is false until the first Store.
func (s *SnapshotStore) Load() (snapshot Snapshot, ok bool) {
	p := s.current.Load()
	if p == nil {
		return Snapshot{}, false
	}
	return *p, true
}
