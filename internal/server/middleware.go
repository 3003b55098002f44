package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID tags every request with an ID, honoring one supplied by the
// caller so upstream proxies can trace through.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if id, ok := c.Get(requestIDKey); ok {
		return id.(string)
	}
	return ""
}

// Recovery converts panics into 500 responses with a logged stack trace.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("http.panic_recovered",
					"error", r,
					"request_id", requestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal server error",
					"request_id": requestID(c),
				})
			}
		}()
		c.Next()
	}
}

// RequestLogger logs each completed request at a level matching its status.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", requestID(c),
		}
		switch {
		case status >= 500:
			logger.Error("http.request", attrs...)
		case status >= 400:
			logger.Warn("http.request", attrs...)
		default:
			logger.Info("http.request", attrs...)
		}
	}
}

// rateLimiter counts requests per client IP within a fixed window.
type rateLimiter struct {
	mu        sync.Mutex
	counts    map[string]int
	lastReset time.Time
	rate      int
	window    time.Duration
}

// RateLimit rejects clients exceeding rate requests per window with a 429.
func RateLimit(rate int, window time.Duration, logger *slog.Logger) gin.HandlerFunc {
	rl := &rateLimiter{
		counts:    make(map[string]int),
		lastReset: time.Now(),
		rate:      rate,
		window:    window,
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		if time.Since(rl.lastReset) > rl.window {
			rl.counts = make(map[string]int)
			rl.lastReset = time.Now()
		}
		count := rl.counts[ip]
		if count >= rl.rate {
			rl.mu.Unlock()
			logger.Warn("http.rate_limited", "client_ip", ip, "request_id", requestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		rl.counts[ip] = count + 1
		rl.mu.Unlock()

		c.Next()
	}
}
