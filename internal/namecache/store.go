// Package namecache keeps the name deduplication cache in Redis so issued
// names survive a restart.
package namecache

import (
	"context"
	"fmt"

	"github.com/genpersona/api/internal/persona"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPrefix = "persona:names"

// Store saves and loads cache snapshots as two Redis sets.
type Store struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewStore creates a store writing under the default key prefix.
func NewStore(client *redis.Client, logger *zap.Logger) *Store {
	return &Store{client: client, prefix: defaultPrefix, logger: logger}
}

func (s *Store) fullKey() string  { return s.prefix + ":full" }
func (s *Store) firstKey() string { return s.prefix + ":first" }

// Save replaces the stored sets with snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snapshot persona.CacheSnapshot) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.fullKey(), s.firstKey())
		if len(snapshot.FullNames) > 0 {
			pipe.SAdd(ctx, s.fullKey(), toArgs(snapshot.FullNames)...)
		}
		if len(snapshot.FirstNames) > 0 {
			pipe.SAdd(ctx, s.firstKey(), toArgs(snapshot.FirstNames)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save name cache: %w", err)
	}
	return nil
}

// Load reads the stored sets. Missing keys load as an empty snapshot.
func (s *Store) Load(ctx context.Context) (persona.CacheSnapshot, error) {
	var snap persona.CacheSnapshot

	full, err := s.client.SMembers(ctx, s.fullKey()).Result()
	if err != nil {
		return snap, fmt.Errorf("load full names: %w", err)
	}
	first, err := s.client.SMembers(ctx, s.firstKey()).Result()
	if err != nil {
		return snap, fmt.Errorf("load first names: %w", err)
	}

	snap.FullNames = full
	snap.FirstNames = first
	return snap, nil
}

// Warm restores the stored snapshot into cache. Failures are logged and
// leave the cache empty.
func (s *Store) Warm(ctx context.Context, cache *persona.NameCache) {
	snap, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("could not restore name cache", zap.Error(err))
		return
	}
	cache.Restore(snap)
	full, first := cache.Len()
	s.logger.Info("name cache restored", zap.Int("full_names", full), zap.Int("first_names", first))
}

func toArgs(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
