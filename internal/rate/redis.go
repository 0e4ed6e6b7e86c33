package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisLimiter: fixed window con INCR + EXPIRE, compartido entre réplicas.
type RedisLimiter struct {
	client goredis.UniversalClient
	prefix string
	policy Policy
}

func NewRedisLimiter(client goredis.UniversalClient, prefix string, p Policy) *RedisLimiter {
	if prefix == "" {
		prefix = "authgate:rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, policy: p}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	start := l.policy.windowStart(time.Now())
	k := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate/redis: %w", err)
	}
	window := ttl.Val()
	// primer hit de la ventana: fijar expiración
	if incr.Val() == 1 || window < 0 {
		if err := l.client.PExpire(ctx, k, l.policy.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate/redis: %w", err)
		}
		window = l.policy.Window
	}
	return l.policy.result(incr.Val(), window), nil
}
