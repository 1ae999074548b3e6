package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"petradar/internal/domain/matching"
	"petradar/internal/ports/geocode"
)

const defaultTTL = 30 * 24 * time.Hour

// Cache decora un Geocoder con una capa Redis. Las direcciones se repiten
// mucho (misma ciudad, mismo barrio) y Nominatim tiene rate limits duros.
type Cache struct {
	inner geocode.Geocoder
	rdb   *redis.Client
	ttl   time.Duration
}

func New(inner geocode.Geocoder, rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *Cache) Geocode(ctx context.Context, address string) (matching.Point, error) {
	key := cacheKey(address)

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var pt matching.Point
		if json.Unmarshal([]byte(raw), &pt) == nil {
			return pt, nil
		}
	}

	pt, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return matching.Point{}, err
	}

	// Un fallo del cache nunca rompe el geocoding.
	if raw, err := json.Marshal(pt); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}

	return pt, nil
}

func cacheKey(address string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(address), " "))
	sum := sha256.Sum256([]byte(norm))
	return "geocode:" + hex.EncodeToString(sum[:8])
}
