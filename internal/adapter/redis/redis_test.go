package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dropDatabas3/authgate/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test"), mr
}

func TestStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	sess, err := s.CreateSession(ctx, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:session:"+sess.SessionToken))

	got, err := s.GetSession(ctx, sess.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)

	require.NoError(t, s.DeleteSession(ctx, sess.SessionToken))
	got, err = s.GetSession(ctx, sess.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SessionExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	sess, err := s.CreateSession(ctx, "user-1", time.Now().Add(time.Minute))
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	got, err := s.GetSession(ctx, sess.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_VerificationTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.CreateVerificationToken(ctx, domain.VerificationToken{
		Identifier: "a@b.c", TokenHash: "h", Expires: time.Now().Add(time.Minute),
	}))

	vt, err := s.UseVerificationToken(ctx, "a@b.c", "h")
	require.NoError(t, err)
	require.NotNil(t, vt)
	assert.Equal(t, "a@b.c", vt.Identifier)

	vt, err = s.UseVerificationToken(ctx, "a@b.c", "h")
	require.NoError(t, err)
	assert.Nil(t, vt)
}

func TestStore_BackendDownSurfacesError(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, err := s.GetSession(context.Background(), "x")
	assert.Error(t, err)
}
