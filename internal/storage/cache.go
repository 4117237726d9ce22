package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aneedalie/meili/internal/models"
	"github.com/aneedalie/meili/internal/utils"
)

// CachedStore layers a redis read cache over a Store. Trip snapshots and
// card lists are the hot path (every join fetches both), so those are
// cached and invalidated on the writes that touch them. A cache failure
// is never surfaced; reads fall through to the inner store.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
	log   *utils.Logger
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, log *utils.Logger) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func tripKey(tripID string) string  { return "trip:" + tripID }
func cardsKey(tripID string) string { return "cards:" + tripID }

func (c *CachedStore) FetchTripSnapshot(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	if c.lookup(ctx, tripKey(tripID), &trip) {
		return &trip, nil
	}
	fresh, err := c.inner.FetchTripSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, tripKey(tripID), fresh)
	return fresh, nil
}

func (c *CachedStore) FetchCards(ctx context.Context, tripID string) ([]models.Card, error) {
	var cards []models.Card
	if c.lookup(ctx, cardsKey(tripID), &cards) {
		return cards, nil
	}
	fresh, err := c.inner.FetchCards(ctx, tripID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, cardsKey(tripID), fresh)
	return fresh, nil
}

func (c *CachedStore) UpsertCard(ctx context.Context, tripID string, card models.Card) (*models.Card, error) {
	saved, err := c.inner.UpsertCard(ctx, tripID, card)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, cardsKey(tripID))
	return saved, nil
}

func (c *CachedStore) RenameTrip(ctx context.Context, tripID, name string) (*models.Trip, error) {
	trip, err := c.inner.RenameTrip(ctx, tripID, name)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, tripKey(tripID))
	return trip, nil
}

func (c *CachedStore) AppendMessage(ctx context.Context, threadID string, msg models.Message) (*models.Message, error) {
	return c.inner.AppendMessage(ctx, threadID, msg)
}

func (c *CachedStore) AppendThread(ctx context.Context, cardID string, thread models.Thread) (*models.Thread, error) {
	return c.inner.AppendThread(ctx, cardID, thread)
}

func (c *CachedStore) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return c.inner.ListTrips(ctx)
}

func (c *CachedStore) CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	return c.inner.CreateTrip(ctx, trip)
}

func (c *CachedStore) UpdateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	updated, err := c.inner.UpdateTrip(ctx, trip)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, tripKey(trip.ID))
	return updated, nil
}

func (c *CachedStore) FetchThreads(ctx context.Context, cardID string) ([]models.Thread, error) {
	return c.inner.FetchThreads(ctx, cardID)
}

func (c *CachedStore) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	return c.inner.FetchMessages(ctx, threadID)
}

func (c *CachedStore) lookup(ctx context.Context, key string, out any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedStore) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
