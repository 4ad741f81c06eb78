package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/stackvest/stackvest_backend/services"
)

// RedisDayLocker serializes a batch job per calendar day across processes
// with a SETNX key. A nil client degrades to always-acquired: the per-
// entity date guards below it still prevent double credits.
type RedisDayLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDayLocker(client *redis.Client) *RedisDayLocker {
	return &RedisDayLocker{client: client, ttl: 48 * time.Hour}
}

var _ services.DayLocker = (*RedisDayLocker)(nil)

func (l *RedisDayLocker) Acquire(ctx context.Context, job, day string) (bool, error) {
	if l.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("engine:job:%s:%s", job, day)
	return l.client.SetNX(ctx, key, time.Now().Format(time.RFC3339), l.ttl).Result()
}
