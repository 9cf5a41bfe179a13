package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/redis/go-redis/v9"
)

// Redis stores payslips as JSON with a server-side expiry, so every API
// instance shares one cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key payroll.CacheKey) (payroll.PaySlip, bool, error) {
	raw, err := r.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return payroll.PaySlip{}, false, nil
		}
		return payroll.PaySlip{}, false, fmt.Errorf("failed to read payslip from redis: %w", err)
	}

	var slip payroll.PaySlip
	if err := json.Unmarshal(raw, &slip); err != nil {
		return payroll.PaySlip{}, false, fmt.Errorf("failed to decode cached payslip: %w", err)
	}
	return slip, true, nil
}

func (r *Redis) Put(ctx context.Context, key payroll.CacheKey, slip payroll.PaySlip) error {
	raw, err := json.Marshal(slip)
	if err != nil {
		return fmt.Errorf("failed to encode payslip: %w", err)
	}
	if err := r.client.Set(ctx, key.String(), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write payslip to redis: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, key payroll.CacheKey) error {
	if err := r.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete payslip from redis: %w", err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
