package external

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dropscout/internal/contracts"
)

func TestBreaker_PassesThrough(t *testing.T) {
	b := NewBreaker("test-pass", DefaultBreakerConfig(), nil)

	got, err := b.Execute(context.Background(), func(ctx context.Context) (contracts.RawPayload, error) {
		return contracts.RawPayload{"reviews": 10}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, got["reviews"])
	assert.Equal(t, "test-pass", b.Source())
}

func TestBreaker_WrapsFailures(t *testing.T) {
	b := NewBreaker("test-wrap", DefaultBreakerConfig(), nil)
	boom := errors.New("connection refused")

	_, err := b.Execute(context.Background(), func(ctx context.Context) (contracts.RawPayload, error) {
		return nil, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, boom)

	var upstream *contracts.UpstreamUnavailableError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "test-wrap", upstream.Source)
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	b := NewBreaker("test-open", cfg, nil)

	calls := 0
	fail := func(ctx context.Context) (contracts.RawPayload, error) {
		calls++
		return nil, errors.New("503")
	}

	for i := 0; i < 2; i++ {
		_, err := b.Execute(context.Background(), fail)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls, "open breaker must not call upstream")
}

func TestBreaker_CancelDoesNotTrip(t *testing.T) {
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 1
	b := NewBreaker("test-cancel", cfg, nil)

	_, err := b.Execute(context.Background(), func(ctx context.Context) (contracts.RawPayload, error) {
		return nil, context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.Equal(t, gobreaker.StateClosed, b.State())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Execute(ctx, func(ctx context.Context) (contracts.RawPayload, error) {
		t.Fatal("must not run with a cancelled context")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeeded_Deterministic(t *testing.T) {
	a, b := Seeded("LED Strip", "42"), Seeded("led strip ", "42")
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(0, 1000), b.Intn(0, 1000))
	}

	c, d := Seeded("LED Strip"), Seeded("Yoga Mat")
	same := true
	for i := 0; i < 5; i++ {
		if c.Intn(0, 1<<30) != d.Intn(0, 1<<30) {
			same = false
		}
	}
	assert.False(t, same)
}

func TestRand_Ranges(t *testing.T) {
	g := Seeded("range")
	for i := 0; i < 200; i++ {
		n := g.Intn(10, 20)
		assert.GreaterOrEqual(t, n, 10)
		assert.Less(t, n, 20)

		f := g.Float(3.5, 5.0, 1)
		assert.GreaterOrEqual(t, f, 3.5)
		assert.Less(t, f, 5.0)
	}
	assert.Equal(t, 7, g.Intn(7, 7))
	assert.Contains(t, []string{"a", "b"}, g.Pick("a", "b"))
}
