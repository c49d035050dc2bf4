package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/utils/cache"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// BruteForceProtection locks out IPs after repeated failed logins
type BruteForceProtection struct {
	cache cache.Cache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(c cache.Cache) *BruteForceProtection {
	return &BruteForceProtection{cache: c}
}

func attemptKey(ip string) string { return "brute_force:attempts:" + ip }
func lockKey(ip string) string    { return "brute_force:lock:" + ip }

// CheckLock rejects requests from locked IPs with 429 and Retry-After
func (b *BruteForceProtection) CheckLock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		locked, err := b.cache.Exists(c.UserContext(), lockKey(ip))
		if err != nil {
			// cache outage must not block logins
			return c.Next()
		}

		if locked {
			ttl, _ := b.cache.TTL(c.UserContext(), lockKey(ip))
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = 60
			}

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailedAttempt counts a failed login and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip string) {
	attempts, err := b.cache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return
	}

	// 15 minute counting window
	if attempts == 1 {
		_ = b.cache.Expire(ctx, attemptKey(ip), 15*time.Minute)
	}

	if d := lockDuration(attempts); d > 0 {
		_ = b.cache.Set(ctx, lockKey(ip), "locked", d)
	}
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) {
	_ = b.cache.Delete(ctx, attemptKey(ip), lockKey(ip))
}

func lockDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}
