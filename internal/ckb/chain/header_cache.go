package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// CachedHeaderStore decorates a RecordStore with an in-memory cache of headers looked
// up by hash. Lookups by number go to the store since a rollback can replace them.
type CachedHeaderStore struct {
	RecordStore
	cache  *bigcache.BigCache
	logger *zap.Logger
}

func NewCachedHeaderStore(ctx context.Context, store RecordStore, lifeWindow time.Duration, logger *zap.Logger) (*CachedHeaderStore, error) {
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Shards = 64
	cfg.MaxEntrySize = 256
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create header cache: %w", err)
	}
	return &CachedHeaderStore{
		RecordStore: store,
		cache:       cache,
		logger:      logger.Named("headerCache"),
	}, nil
}

func (s *CachedHeaderStore) BlockHeader(ctx context.Context, q model.HeaderQuery) (model.Header, error) {
	if q.Hash == nil {
		return s.RecordStore.BlockHeader(ctx, q)
	}
	key := hashKey(*q.Hash)

	if raw, err := s.cache.Get(key); err == nil {
		var h model.Header
		if err := json.Unmarshal(raw, &h); err == nil {
			return h, nil
		}
		s.logger.Warn("drop undecodable cached header", zap.String("key", key))
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		s.logger.Warn("header cache lookup failed", zap.String("key", key), zap.Error(err))
	}

	h, err := s.RecordStore.BlockHeader(ctx, q)
	if err != nil {
		return model.Header{}, err
	}

	raw, err := json.Marshal(h)
	if err != nil {
		return h, nil
	}
	if err := s.cache.Set(key, raw); err != nil {
		s.logger.Warn("header cache store failed", zap.String("key", key), zap.Error(err))
	}
	return h, nil
}

func (s *CachedHeaderStore) Close() error {
	return s.cache.Close()
}

func hashKey(h model.Hash) string {
	return "h:" + h.String()
}
