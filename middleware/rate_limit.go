package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/bbsplus/utils"
)

const limiterIdle = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// limiterSet holds one token bucket per client key.
type limiterSet struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rateLimiter
}

func newLimiterSet(perMinute int) *limiterSet {
	perMinute = max(perMinute, 1)
	return &limiterSet{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		limiters: map[string]*rateLimiter{},
	}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, l := range s.limiters {
		if now.After(l.expires) {
			delete(s.limiters, k)
		}
	}
	l, ok := s.limiters[key]
	if !ok {
		l = &rateLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = l
	}
	l.expires = now.Add(limiterIdle)
	return l.limiter.Allow()
}

// RateLimit throttles write endpoints per user, falling back to the client IP for anonymous calls.
func RateLimit(perMinute int) gin.HandlerFunc {
	set := newLimiterSet(perMinute)
	return func(ctx *gin.Context) {
		key := "ip:" + ctx.ClientIP()
		if uid, ok := ctx.Get(ContextUserIDKey); ok {
			if id, ok := uid.(uint); ok {
				key = "user:" + strconv.FormatUint(uint64(id), 10)
			}
		}
		if !set.allow(key) {
			utils.Error(ctx, http.StatusTooManyRequests, http.StatusTooManyRequests, utils.T(ctx, "common.rate_limited"))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
