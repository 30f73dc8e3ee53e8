package huntstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

const (
	redisKeyPrefix = "treasurehunt:hunt:"
	redisIndexKey  = "treasurehunt:hunts"
)

// RedisStore keeps each hunt as a JSON string. Commits run inside
// WATCH/MULTI so a concurrent writer aborts the transaction.
type RedisStore struct {
	rdb  *redis.Client
	opts Options
}

func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	return &RedisStore{rdb: rdb, opts: opts}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) CreateHunt(ctx context.Context, id string, state treasurehunt.State) (Hunt, error) {
	t := now()
	h := Hunt{ID: id, Version: 1, State: state.Clone(), CreatedAt: t, UpdatedAt: t}
	data, err := json.Marshal(h)
	if err != nil {
		return Hunt{}, err
	}

	ok, err := s.rdb.SetNX(ctx, redisKey(id), data, 0).Result()
	if err != nil {
		return Hunt{}, fmt.Errorf("storing hunt %s: %w", id, err)
	}
	if !ok {
		return Hunt{}, ErrExists
	}
	if err := s.rdb.SAdd(ctx, redisIndexKey, id).Err(); err != nil {
		return Hunt{}, fmt.Errorf("indexing hunt %s: %w", id, err)
	}
	return h, nil
}

func (s *RedisStore) ListHunts(ctx context.Context) ([]Hunt, error) {
	ids, err := s.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	hunts := make([]Hunt, 0, len(ids))
	for _, id := range ids {
		h, err := s.load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		hunts = append(hunts, h)
	}
	return hunts, nil
}

func (s *RedisStore) Hunt(ctx context.Context, id string) (Hunt, error) {
	return s.load(ctx, id)
}

func (s *RedisStore) Apply(ctx context.Context, id string, action treasurehunt.Action) (Result, error) {
	return apply(ctx, s, s.opts, id, action)
}

// Close is a no-op; the caller owns the client.
func (s *RedisStore) Close() error { return nil }

func (s *RedisStore) load(ctx context.Context, id string) (Hunt, error) {
	return decodeHunt(s.rdb.Get(ctx, redisKey(id)))
}

func (s *RedisStore) commit(ctx context.Context, prev Hunt, next treasurehunt.State) (Hunt, error) {
	key := redisKey(prev.ID)
	var committed Hunt

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := decodeHunt(tx.Get(ctx, key))
		if err != nil {
			return err
		}
		if cur.Version != prev.Version {
			return ErrConflict
		}

		committed = Hunt{
			ID:        cur.ID,
			Version:   cur.Version + 1,
			State:     next,
			CreatedAt: cur.CreatedAt,
			UpdatedAt: now(),
		}
		data, err := json.Marshal(committed)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return Hunt{}, ErrConflict
	}
	if err != nil {
		return Hunt{}, err
	}
	return committed, nil
}

func decodeHunt(cmd *redis.StringCmd) (Hunt, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return Hunt{}, ErrNotFound
	}
	if err != nil {
		return Hunt{}, err
	}
	var h Hunt
	if err := json.Unmarshal(data, &h); err != nil {
		return Hunt{}, fmt.Errorf("decoding hunt: %w", err)
	}
	return h, nil
}
