package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/config"
)

// LoginRateLimiter throttles login attempts per client IP to slow down
// credential stuffing. Limiters are kept in memory for the process lifetime;
// the map is small enough in practice that eviction is not worth the churn.
func LoginRateLimiter(cfg config.RateLimitConfig) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	perSecond := rate.Limit(float64(cfg.LoginPerMinute) / 60.0)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(perSecond, cfg.LoginBurst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			apierr.Abort(c, apierr.TooManyRequests("rate_limited", "too many login attempts, slow down"))
			return
		}
		c.Next()
	}
}
