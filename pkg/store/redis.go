package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces layout keys in a shared Redis.
const DefaultRedisPrefix = "dashgrid:layout:"

// RedisStore keeps records as JSON strings. Each topology also has a set
// of its group ids so List does not need SCAN.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL (redis://host:port/db) and pings it.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultRedisPrefix}
}

func (s *RedisStore) key(topology, group string) string {
	return s.prefix + Key(topology, group)
}

func (s *RedisStore) groupsKey(topology string) string {
	return s.prefix + topology + ":groups"
}

func (s *RedisStore) Get(ctx context.Context, topology, group string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(topology, group)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if err := stamp(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(rec.Topology, rec.Group), data, 0)
		p.SAdd(ctx, s.groupsKey(rec.Topology), rec.Group)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, topology, group string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(topology, group))
		p.SRem(ctx, s.groupsKey(topology), group)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, topology string) ([]Record, error) {
	groups, err := s.client.SMembers(ctx, s.groupsKey(topology)).Result()
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	sort.Strings(groups)
	out := make([]Record, 0, len(groups))
	for _, g := range groups {
		rec, err := s.Get(ctx, topology, g)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
