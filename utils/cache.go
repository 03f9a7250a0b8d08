package utils

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

const (
	defaultCacheTTL = 5 * time.Minute
	cachePrefix     = "bbsplus:"

	// CacheKeySettings holds the public settings payload.
	CacheKeySettings = cachePrefix + "settings"
	// CacheKeyStats holds the plugin-wide counters.
	CacheKeyStats = cachePrefix + "stats"
	// CacheKeyBadgeWall prefixes public badge walls, one key per user.
	CacheKeyBadgeWall = cachePrefix + "badge_wall:"
)

// BadgeWallCacheKey is the cache key of one user's public wall.
func BadgeWallCacheKey(userID uint) string {
	return CacheKeyBadgeWall + strconv.FormatUint(uint64(userID), 10)
}

// CacheGetBytes returns cached bytes for a key from Redis.
func CacheGetBytes(ctx context.Context, key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes; a non-positive ttl means the default.
func CacheSetBytes(ctx context.Context, key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// CacheGetJSON decodes a cached JSON value into out.
func CacheGetJSON(ctx context.Context, key string, out interface{}) bool {
	b, ok := CacheGetBytes(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

// CacheSetJSON marshals v and stores JSON bytes.
func CacheSetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(ctx, key, b, ttl)
}

// CacheDelete removes keys.
func CacheDelete(ctx context.Context, keys ...string) {
	rc := GetRedis()
	if rc == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Del(ctx, keys...).Err(); err != nil {
		Sugar.Warnf("cache delete failed keys=%v err=%v", keys, err)
	}
}

// InvalidateByPrefix deletes keys that match the given prefix using SCAN.
func InvalidateByPrefix(ctx context.Context, prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // bounded rounds
		keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
