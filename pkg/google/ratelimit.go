package google

import (
	"context"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API service for rate limiting purposes.
type ServiceType string

const (
	ServiceClassroom ServiceType = "classroom"
	ServiceDrive     ServiceType = "drive"
	ServiceCalendar  ServiceType = "calendar"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimits stays well below Google's published quotas so a full
// pipeline run over many courses cannot exhaust them.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceClassroom: {RequestsPerSecond: 4.0, BurstSize: 8},
	ServiceDrive:     {RequestsPerSecond: 5.0, BurstSize: 10},
	ServiceCalendar:  {RequestsPerSecond: 5.0, BurstSize: 10},
}

type limiter struct {
	l *rate.Limiter
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{l: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize)}
}

func (lm *limiter) wait(ctx context.Context) error {
	return lm.l.Wait(ctx)
}
