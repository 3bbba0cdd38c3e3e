package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/config"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	metrics *service.MetricsService
	now     func() time.Time
	sweepAt time.Time
}

// NewRateLimiter builds a limiter from configuration. RPS <= 0 disables it.
func NewRateLimiter(cfg config.RateLimitConfig, metrics *service.MetricsService) *RateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RPS))
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(cfg.RPS),
		burst:   burst,
		metrics: metrics,
		now:     time.Now,
	}
}

// Middleware rejects requests over budget with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.limit <= 0 {
			c.Next()
			return
		}
		limiter := l.get(c.ClientIP())
		if !limiter.AllowN(l.now(), 1) {
			l.metrics.RecordRateLimited()
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.sweepAt) {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
		l.sweepAt = now.Add(limiterIdleTTL)
	}

	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}
