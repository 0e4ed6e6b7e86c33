package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, l Limiter) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4|signin")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
		assert.EqualValues(t, i, res.Hits)
	}
	res, err := l.Allow(ctx, "1.2.3.4|signin")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Positive(t, res.RetryAfter)

	other, err := l.Allow(ctx, "5.6.7.8|signin")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")
}

func TestMemoryLimiter(t *testing.T) {
	exercise(t, NewMemoryLimiter(Policy{Max: 3, Window: time.Hour}))
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exercise(t, NewRedisLimiter(client, "", Policy{Max: 3, Window: time.Hour}))

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.Contains(t, keys[0], "authgate:rl:")
	assert.Positive(t, mr.TTL(keys[0]))
}
