package chain

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// DefaultExclusionKey is the redis set holding out-points spent by pool transactions.
const DefaultExclusionKey = "ckb:pool:spent"

type setMembersReader interface {
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// RedisExclusionSource reads "<tx hash>:<index>" members of a redis set.
type RedisExclusionSource struct {
	client setMembersReader
	key    string
}

func NewRedisExclusionSource(client redis.UniversalClient, key string) *RedisExclusionSource {
	return newRedisExclusionSource(client, key)
}

func newRedisExclusionSource(client setMembersReader, key string) *RedisExclusionSource {
	if key == "" {
		key = DefaultExclusionKey
	}
	return &RedisExclusionSource{client: client, key: key}
}

func (s *RedisExclusionSource) Excluded(ctx context.Context) (map[model.OutPoint]struct{}, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read exclusion set %s: %w", s.key, err)
	}

	out := make(map[model.OutPoint]struct{}, len(members))
	for _, m := range members {
		op, err := ParseOutPoint(m)
		if err != nil {
			return nil, fmt.Errorf("exclusion set %s: %w", s.key, err)
		}
		out[op] = struct{}{}
	}
	return out, nil
}

// ParseOutPoint decodes the "<tx hash>:<index>" form produced by model.OutPoint.String.
func ParseOutPoint(s string) (model.OutPoint, error) {
	hashPart, indexPart, ok := strings.Cut(s, ":")
	if !ok {
		return model.OutPoint{}, fmt.Errorf("malformed out point %q", s)
	}
	hash, err := model.HexToHash(hashPart)
	if err != nil {
		return model.OutPoint{}, fmt.Errorf("out point %q: %w", s, err)
	}
	index, err := strconv.ParseUint(indexPart, 10, 32)
	if err != nil {
		return model.OutPoint{}, fmt.Errorf("out point %q index: %w", s, err)
	}
	return model.OutPoint{TxHash: hash, Index: uint32(index)}, nil
}
