package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"golang.org/x/sync/singleflight"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedCatalog is a read-through cache in front of the catalog. Only catalog
// records are cached; booking-derived availability never goes through here.
// Concurrent misses for the same key share one origin load.
type CachedCatalog struct {
	next  repository.CatalogRepository
	store Store
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedCatalog(next repository.CatalogRepository, store Store, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, store: store, ttl: ttl}
}

func (c *CachedCatalog) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	return readThrough(ctx, c, "rooms:"+keyOf(filter), func(ctx context.Context) ([]domain.Room, error) {
		return c.next.ListRooms(ctx, filter)
	})
}

func (c *CachedCatalog) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return readThrough(ctx, c, fmt.Sprintf("room:%d", id), func(ctx context.Context) (*domain.Room, error) {
		return c.next.GetRoom(ctx, id)
	})
}

func (c *CachedCatalog) ListFlights(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	return readThrough(ctx, c, "flights:"+keyOf(filter), func(ctx context.Context) ([]domain.Flight, error) {
		return c.next.ListFlights(ctx, filter)
	})
}

func (c *CachedCatalog) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	return readThrough(ctx, c, fmt.Sprintf("flight:%d", id), func(ctx context.Context) (*domain.Flight, error) {
		return c.next.GetFlight(ctx, id)
	})
}

func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, load func(context.Context) (T, error)) (T, error) {
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		log.Printf("catalog cache get %s: %v", key, err)
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		log.Printf("catalog cache decode %s: %v", key, err)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(loaded); err == nil {
			if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
				log.Printf("catalog cache set %s: %v", key, err)
			}
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func keyOf(filter any) string {
	data, _ := json.Marshal(filter)
	return string(data)
}

var _ repository.CatalogRepository = (*CachedCatalog)(nil)
