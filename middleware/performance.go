package middleware

import (
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"restaurante-admin/pkg/response"
)

// PerformanceConfig 性能监控配置
type PerformanceConfig struct {
	SlowThreshold time.Duration // 慢请求阈值
	EnableLogging bool
	SkipPaths     []string
}

// DefaultPerformanceConfig 报表请求要串行调用五次后端，阈值放宽到 2s
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		SlowThreshold: 2 * time.Second,
		EnableLogging: true,
		SkipPaths:     []string{"/health", "/metrics", "/favicon.ico"},
	}
}

// Performance 慢请求日志中间件
func Performance(config ...PerformanceConfig) gin.HandlerFunc {
	cfg := DefaultPerformanceConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *gin.Context) {
		for _, path := range cfg.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		if cfg.EnableLogging && latency > cfg.SlowThreshold {
			log.Printf("[SLOW REQUEST] %s %s - Status: %d, Latency: %v, request_id=%s",
				c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency, c.GetString(RequestIDKey))
		}

		if gin.Mode() == gin.DebugMode {
			c.Header("X-Response-Time", latency.String())
		}
	}
}

// RateLimit 按客户端 IP 的滑动窗口限流，rpm 为每分钟请求数，<=0 时不限流
func RateLimit(rpm int) gin.HandlerFunc {
	if rpm <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newRateLimiter(rpm, time.Now)

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			response.Abort(c, response.TOO_MANY_REQUESTS)
			return
		}
		c.Next()
	}
}

const rateWindow = time.Minute

type rateLimiter struct {
	mu        sync.Mutex
	rpm       int
	requests  map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(rpm int, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		rpm:       rpm,
		requests:  make(map[string][]time.Time),
		lastSweep: now(),
		now:       now,
	}
}

func (l *rateLimiter) allow(ip string) bool {
	now := l.now()
	cutoff := now.Add(-rateWindow)

	l.mu.Lock()
	defer l.mu.Unlock()

	// 每个窗口清理一次不再活跃的客户端
	if now.Sub(l.lastSweep) >= rateWindow {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	valid := l.requests[ip][:0]
	for _, ts := range l.requests[ip] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	if len(valid) >= l.rpm {
		l.requests[ip] = valid
		return false
	}
	l.requests[ip] = append(valid, now)
	return true
}

// sweep 删除窗口内没有请求的 IP，调用方持有锁
func (l *rateLimiter) sweep(cutoff time.Time) {
	for ip, times := range l.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.requests, ip)
		}
	}
}

func (l *rateLimiter) clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}
