package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/catalog/pkg/response"
	"github.com/mercadito/catalog/internal/log"
)

// KeySnapshot is the single fixed cache key. The service models one catalog,
// not per-query caching.
const KeySnapshot = "catalog:snapshot"

// Snapshot is one fully-enriched, point-in-time materialization of the
// catalog. Immutable once created; mutations invalidate instead of patching.
type Snapshot struct {
	FetchedAt time.Time          `json:"fetchedAt"`
	Products  []response.Product `json:"products"`
}

// SnapshotStore keeps the snapshot in Redis under KeySnapshot with a TTL.
// Every store failure degrades to a cache miss or a no-op: the catalog always
// falls back to a live fetch rather than failing a request on the cache.
type SnapshotStore struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewSnapshotStore(cache *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{cache: cache, ttl: ttl}
}

func (s *SnapshotStore) Get(c context.Context) (Snapshot, bool) {
	c, span := otel.Tracer.Start(c, "SnapshotStore Get")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SnapshotStore Get").
		Str(log.KeyCacheKey, KeySnapshot).
		Logger()

	payload, err := s.cache.Get(c, KeySnapshot).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logger.Debug().Msg("snapshot not in cache")
			return Snapshot{}, false
		}
		err = fmt.Errorf("failed reading snapshot from cache with error=%w", err)
		logger.Warn().Err(err).Msg("treating cache failure as miss")
		return Snapshot{}, false
	}

	snapshot := Snapshot{}
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		err = fmt.Errorf("failed unmarshaling cached snapshot with error=%w", err)
		logger.Warn().Err(err).Msg("treating undecodable snapshot as miss")
		return Snapshot{}, false
	}

	logger.Debug().Msg("snapshot found in cache")
	return snapshot, true
}

func (s *SnapshotStore) Set(c context.Context, snapshot Snapshot) {
	c, span := otel.Tracer.Start(c, "SnapshotStore Set")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SnapshotStore Set").
		Str(log.KeyCacheKey, KeySnapshot).
		Logger()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		err = fmt.Errorf("failed marshaling snapshot with error=%w", err)
		logger.Warn().Err(err).Msg("skipping snapshot caching")
		return
	}
	if err := s.cache.Set(c, KeySnapshot, payload, s.ttl).Err(); err != nil {
		err = fmt.Errorf("failed storing snapshot in cache with error=%w", err)
		logger.Warn().Err(err).Msg("skipping snapshot caching")
		return
	}
	logger.Info().Msg("stored snapshot in cache")
}

// Invalidate removes the snapshot so the next read refetches.
func (s *SnapshotStore) Invalidate(c context.Context) {
	c, span := otel.Tracer.Start(c, "SnapshotStore Invalidate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SnapshotStore Invalidate").
		Str(log.KeyCacheKey, KeySnapshot).
		Logger()

	if err := s.cache.Del(c, KeySnapshot).Err(); err != nil {
		err = fmt.Errorf("failed invalidating snapshot with error=%w", err)
		logger.Warn().Err(err).Msg("snapshot invalidation failed")
		return
	}
	logger.Info().Msg("invalidated snapshot")
}
