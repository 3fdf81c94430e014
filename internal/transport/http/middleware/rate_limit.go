package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/port"
)

// RateLimitStore is the sliding-window persistence behind the limiter.
type RateLimitStore = port.RateLimitStore

// IdentifierFunc extracts the value a limit is scoped to, typically the
// client IP. Returning false skips the rule for this request.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule is one sliding-window limit.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window limits on the legacy credential
// endpoints, where unthrottled guessing is the main abuse vector.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// decision is the outcome of evaluating one rule for one request.
type decision struct {
	allowed   bool
	limit     int
	remaining int
	reset     time.Time
	retryIn   time.Duration
}

// NewRateLimiter builds a limiter over the given store.
func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock injects a clock for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule to the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// RateLimit enforces the given rules. The first blocked rule aborts with 429;
// otherwise the strictest rule's headers are reported. A failing store lets
// the request through: throttling must never take the login path down.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		active = append(active, rule)
	}

	return func(c *gin.Context) {
		if len(active) == 0 || rl.store == nil {
			c.Next()
			return
		}

		now := rl.now()
		var strictest *decision

		for _, rule := range active {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}
			key := rule.Name + ":" + identifier

			dec, err := rl.evaluate(c.Request.Context(), rule, key, now)
			if err != nil {
				rl.logger.Warn("rate limit evaluation failed",
					zap.String("rule", rule.Name),
					zap.String("identifier", identifier),
					zap.Error(err),
				)
				continue
			}

			if !dec.allowed {
				rl.writeHeaders(c, dec)
				rl.reject(c, dec)
				return
			}
			if strictest == nil || dec.remaining < strictest.remaining {
				snapshot := dec
				strictest = &snapshot
			}
		}

		if strictest != nil {
			rl.writeHeaders(c, *strictest)
		}
		c.Next()
	}
}

func (rl *RateLimiter) evaluate(ctx context.Context, rule RateLimitRule, key string, now time.Time) (decision, error) {
	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return decision{}, err
	}
	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return decision{}, err
	}
	oldest, hasAttempts, err := rl.store.OldestAttempt(ctx, key, rule.Window, now)
	if err != nil {
		return decision{}, err
	}

	reset := now.Add(rule.Window)
	if hasAttempts {
		reset = oldest.Add(rule.Window)
	}
	retryIn := reset.Sub(now)
	if retryIn < 0 {
		retryIn = 0
	}

	if count >= rule.Limit {
		return decision{limit: rule.Limit, reset: reset, retryIn: retryIn}, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return decision{}, err
	}

	remaining := rule.Limit - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return decision{
		allowed:   true,
		limit:     rule.Limit,
		remaining: remaining,
		reset:     reset,
		retryIn:   retryIn,
	}, nil
}

func (rl *RateLimiter) writeHeaders(c *gin.Context, dec decision) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(dec.limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(dec.remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(dec.reset.Unix(), 10))

	if !dec.allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(dec)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, dec decision) {
	seconds := retrySeconds(dec)
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		newErrorResponse(c, fmt.Sprintf("too many attempts, retry in %d seconds", seconds)))
}

func retrySeconds(dec decision) int {
	seconds := int(math.Ceil(dec.retryIn.Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}
