package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/phoneauthsvc/domain"
)

// Limits configures the fixed-window quotas.
type Limits struct {
	IPPerHour    int
	PhonePerHour int
	PhonePerDay  int
}

// RedisLimiterImpl implements domain.RateLimiter with Redis fixed
// windows (INCR + EXPIRE on first hit). A Redis outage fails open with a
// logged warning so an infrastructure problem cannot lock out logins.
type RedisLimiterImpl struct {
	client *redis.Client
	limits Limits
}

// NewRedisLimiter creates a new Redis-backed rate limiter
func NewRedisLimiter(client *redis.Client, limits Limits) domain.RateLimiter {
	return &RedisLimiterImpl{client: client, limits: limits}
}

// CheckIPLimit implements domain.RateLimiter
func (l *RedisLimiterImpl) CheckIPLimit(ctx context.Context, ip string) (*domain.IPRateDecision, error) {
	count, err := l.hit(ctx, fmt.Sprintf("rl:ip:%s", ip), time.Hour)
	if err != nil {
		log.Printf("RATE_LIMIT_CHECK_FAILED: scope=ip key=%s error=%v", ip, err)
		return &domain.IPRateDecision{Allowed: true, Remaining: l.limits.IPPerHour}, nil
	}

	remaining := l.limits.IPPerHour - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if int(count) > l.limits.IPPerHour {
		return &domain.IPRateDecision{
			Allowed: false,
			Message: "Too many requests from this IP",
		}, nil
	}
	return &domain.IPRateDecision{Allowed: true, Remaining: remaining}, nil
}

// CheckPhoneLimit implements domain.RateLimiter
func (l *RedisLimiterImpl) CheckPhoneLimit(ctx context.Context, phone string) (*domain.PhoneRateDecision, error) {
	hourly, err := l.hit(ctx, fmt.Sprintf("rl:phone:h:%s", phone), time.Hour)
	if err != nil {
		log.Printf("RATE_LIMIT_CHECK_FAILED: scope=phone key=%s error=%v", phone, err)
		return &domain.PhoneRateDecision{
			Allowed:         true,
			HourlyRemaining: l.limits.PhonePerHour,
			DailyRemaining:  l.limits.PhonePerDay,
		}, nil
	}
	daily, err := l.hit(ctx, fmt.Sprintf("rl:phone:d:%s", phone), 24*time.Hour)
	if err != nil {
		log.Printf("RATE_LIMIT_CHECK_FAILED: scope=phone key=%s error=%v", phone, err)
		return &domain.PhoneRateDecision{
			Allowed:         true,
			HourlyRemaining: l.limits.PhonePerHour,
			DailyRemaining:  l.limits.PhonePerDay,
		}, nil
	}

	decision := &domain.PhoneRateDecision{
		Allowed:         true,
		HourlyRemaining: clampRemaining(l.limits.PhonePerHour - int(hourly)),
		DailyRemaining:  clampRemaining(l.limits.PhonePerDay - int(daily)),
	}
	if int(hourly) > l.limits.PhonePerHour || int(daily) > l.limits.PhonePerDay {
		decision.Allowed = false
		decision.Message = "Too many OTP requests"
	}
	return decision, nil
}

// hit counts a request against a window, setting the expiry when the
// window opens.
func (l *RedisLimiterImpl) hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func clampRemaining(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
