package utils

import (
	"context"
	"time"
)

// The host writes revoked tokens to Redis under this prefix on logout.
const revokedTokenPrefix = "jwt:blacklist:"

// IsTokenRevoked reports whether the host revoked token before its expiry.
// Without Redis, or when Redis is unreachable, tokens are accepted.
func IsTokenRevoked(ctx context.Context, token string) bool {
	rc := GetRedis()
	if rc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := rc.Exists(ctx, revokedTokenPrefix+token).Result()
	if err != nil {
		Sugar.Warnf("token revocation lookup failed: %v", err)
		return false
	}
	return n > 0
}
