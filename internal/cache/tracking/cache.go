package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"service-parcel-tracking/internal/domain"
)

const (
	keyFormat     = "parcel:tracking:%s"
	holdKeyFormat = "parcel:tracking:%s:hold"
)

// fillScript stores a view unless an invalidation hold is in place.
var fillScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// Cache keeps public tracking views in Redis.
//
// Invalidate leaves a hold key that lives for holdoff. Set is refused while
// the hold exists, so a reader that loaded the view before a commit cannot
// put it back after the commit invalidated it. holdoff must cover the longest
// read-then-set a caller performs.
type Cache struct {
	rdb     redis.Cmdable
	ttl     time.Duration
	holdoff time.Duration
}

// NewClient creates a Redis client for addr.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// New creates a tracking view cache. Entries expire after ttl; fills are
// refused for holdoff after an invalidation.
func New(rdb redis.Cmdable, ttl, holdoff time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, holdoff: holdoff}
}

func key(trackingID string) string {
	return fmt.Sprintf(keyFormat, trackingID)
}

func holdKey(trackingID string) string {
	return fmt.Sprintf(holdKeyFormat, trackingID)
}

// Get returns the cached view, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, trackingID string) (*domain.TrackingView, error) {
	raw, err := c.rdb.Get(ctx, key(trackingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracking cache get: %w", err)
	}

	var v domain.TrackingView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("tracking cache decode: %w", err)
	}
	return &v, nil
}

// Set stores the view under its tracking id. It is a silent no-op while an
// invalidation hold is active.
func (c *Cache) Set(ctx context.Context, v domain.TrackingView) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("tracking cache encode: %w", err)
	}
	keys := []string{key(v.TrackingID), holdKey(v.TrackingID)}
	if err := fillScript.Run(ctx, c.rdb, keys, raw, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("tracking cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached view and holds off fills for the holdoff window.
func (c *Cache) Invalidate(ctx context.Context, trackingID string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(trackingID))
		if c.holdoff > 0 {
			pipe.Set(ctx, holdKey(trackingID), "1", c.holdoff)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tracking cache invalidate: %w", err)
	}
	return nil
}
