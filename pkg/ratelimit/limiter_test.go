package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelay(t *testing.T) {
	fd, err := NewFixedDelay(50 * time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, fd.Wait(context.Background()))
	require.NoError(t, fd.Wait(context.Background()))

	// the delay applies before every request, including the first
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestFixedDelayZero(t *testing.T) {
	fd, err := NewFixedDelay(0)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, fd.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestFixedDelayNegative(t *testing.T) {
	_, err := NewFixedDelay(-time.Second)
	assert.Error(t, err)
}

func TestFixedDelayCancelled(t *testing.T) {
	fd, err := NewFixedDelay(time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = fd.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPerMinute(t *testing.T) {
	pm := NewPerMinute(600) // one request per 100ms

	start := time.Now()
	require.NoError(t, pm.Wait(context.Background()))
	require.NoError(t, pm.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

type countingLimiter struct {
	calls int
	err   error
}

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestChain(t *testing.T) {
	first := &countingLimiter{}
	second := &countingLimiter{}
	chain := Chain{first, nil, second}

	require.NoError(t, chain.Wait(context.Background()))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)

	first.err = errors.New("stop")
	assert.Error(t, chain.Wait(context.Background()))
	assert.Equal(t, 1, second.calls)
}

func TestNew(t *testing.T) {
	l, err := New(time.Millisecond, 0)
	require.NoError(t, err)
	assert.IsType(t, &FixedDelay{}, l)

	l, err = New(time.Millisecond, 60)
	require.NoError(t, err)
	assert.IsType(t, Chain{}, l)

	_, err = New(-time.Millisecond, 0)
	assert.Error(t, err)
}
