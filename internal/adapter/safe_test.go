package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type brokenAdapter struct{ panicOnGet bool }

func (b *brokenAdapter) CreateSession(ctx context.Context, userID string, expires time.Time) (*domain.Session, error) {
	return nil, errors.New("db down")
}

func (b *brokenAdapter) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	if b.panicOnGet {
		panic("boom")
	}
	return nil, errors.New("db down")
}

func (b *brokenAdapter) DeleteSession(ctx context.Context, token string) error {
	return errors.New("db down")
}

type countingRecorder struct{ n map[string]int }

func (c *countingRecorder) CollaboratorFailure(collaborator, op string) {
	c.n[collaborator+"."+op]++
}

func TestSafe_NilStaysNil(t *testing.T) {
	assert.Nil(t, Safe(nil, nil, nil))
}

func TestSafe_ErrorsBecomeNoop(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	rec := &countingRecorder{n: map[string]int{}}
	a := Safe(&brokenAdapter{}, zap.New(core), rec)
	ctx := context.Background()

	s, err := a.CreateSession(ctx, "u", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = a.GetSession(ctx, "t")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, a.DeleteSession(ctx, "t"))

	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, 1, rec.n["adapter.GetSession"])
}

func TestSafe_RecoversPanic(t *testing.T) {
	a := Safe(&brokenAdapter{panicOnGet: true}, nil, nil)

	require.NotPanics(t, func() {
		s, err := a.GetSession(context.Background(), "t")
		assert.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestSafe_IsIdempotent(t *testing.T) {
	a := Safe(&brokenAdapter{}, nil, nil)
	assert.Same(t, a, Safe(a, nil, nil))
	_, isVerifier := a.(VerificationStore)
	assert.False(t, isVerifier)
}

func TestOpen_NoDriverIsStateless(t *testing.T) {
	a, closeFn, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, closeFn())

	_, _, err = Open(context.Background(), Config{Driver: "cassandra"})
	assert.Error(t, err)
}
