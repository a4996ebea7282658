package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

// maxLimiters 单个维度保留的限流器上限，超过后整体重建
const maxLimiters = 10000

// RateLimiter 按 IP 和用户两个维度的令牌桶限流
type RateLimiter struct {
	ip   *limiterSet
	user *limiterSet

	cleanupInterval time.Duration
	lastCleanup     time.Time
	cleanupMu       sync.Mutex
}

type limiterSet struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiterSet(r float64, burst int) *limiterSet {
	return &limiterSet{limiters: make(map[string]*rate.Limiter), rate: rate.Limit(r), burst: burst}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.RLock()
	l, ok := s.limiters[key]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.limiters[key]; !ok {
		l = rate.NewLimiter(s.rate, s.burst)
		s.limiters[key] = l
	}
	return l
}

func (s *limiterSet) reset() {
	s.mu.Lock()
	if len(s.limiters) > maxLimiters {
		s.limiters = make(map[string]*rate.Limiter)
	}
	s.mu.Unlock()
}

// NewRateLimiter 创建限流器，速率单位为每秒请求数
func NewRateLimiter(ipRate float64, ipBurst int, userRate float64, userBurst int) *RateLimiter {
	return &RateLimiter{
		ip:              newLimiterSet(ipRate, ipBurst),
		user:            newLimiterSet(userRate, userBurst),
		cleanupInterval: 10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

func (rl *RateLimiter) cleanup() {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) < rl.cleanupInterval {
		return
	}
	rl.ip.reset()
	rl.user.reset()
	rl.lastCleanup = now
}

// Limit 限流中间件。用户维度需要放在认证中间件之后才生效
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.cleanup()

		if !rl.ip.get(c.ClientIP()).Allow() {
			httputil.AbortWithError(c, apperrors.ErrTooManyRequests.WithMessage("Rate limit exceeded (IP)"))
			return
		}
		if uid := GetUserID(c); uid != "" {
			if !rl.user.get(uid).Allow() {
				httputil.AbortWithError(c, apperrors.ErrTooManyRequests.WithMessage("Rate limit exceeded (User)"))
				return
			}
		}

		c.Next()
	}
}
