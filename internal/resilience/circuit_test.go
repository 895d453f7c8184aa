package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = NewTransientError(errors.New("busy"), 503)

func fail(context.Context) error { return errBusy }
func ok(context.Context) error   { return nil }

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int) (*Breaker, *clock) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker("catalog_a", BreakerConfig{FailureThreshold: threshold, CoolDown: time.Minute})
	b.now = c.now
	return b, c
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3)
	ctx := context.Background()
	for range 3 {
		assert.ErrorIs(t, b.Execute(ctx, fail), errBusy)
	}
	assert.Equal(t, CircuitOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "catalog_a")
	assert.False(t, called)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b, _ := newTestBreaker(3)
	ctx := context.Background()
	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	require.NoError(t, b.Execute(ctx, ok))
	assert.Zero(t, b.Failures())
	_ = b.Execute(ctx, fail)
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreaker_PermanentErrorsDoNotTrip(t *testing.T) {
	b, _ := newTestBreaker(1)
	for range 5 {
		_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("no match") })
	}
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, c := newTestBreaker(1)
	ctx := context.Background()
	_ = b.Execute(ctx, fail)
	require.Equal(t, CircuitOpen, b.State())

	c.advance(time.Minute)
	assert.Equal(t, CircuitHalfOpen, b.State())
	require.NoError(t, b.Execute(ctx, ok))
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, c := newTestBreaker(2)
	ctx := context.Background()
	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	c.advance(2 * time.Minute)
	require.Equal(t, CircuitHalfOpen, b.State())

	_ = b.Execute(ctx, fail)
	assert.Equal(t, CircuitOpen, b.State())
}

func TestBreaker_OnStateChangeAndReset(t *testing.T) {
	var changes []string
	b := NewBreaker("x", BreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(from, to CircuitState) {
			changes = append(changes, from.String()+">"+to.String())
		},
	})
	_ = b.Execute(context.Background(), fail)
	b.Reset()
	assert.Equal(t, []string{"closed>open", "open>closed"}, changes)
	assert.Equal(t, CircuitClosed, b.State())
}

func TestExecuteVal(t *testing.T) {
	b, _ := newTestBreaker(1)
	v, err := ExecuteVal(context.Background(), b, func(context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_ = b.Execute(context.Background(), fail)
	v, err = ExecuteVal(context.Background(), b, func(context.Context) (string, error) { return "y", nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Empty(t, v)
}

func TestBreaker_Concurrent(t *testing.T) {
	b := NewBreaker("c", BreakerConfig{FailureThreshold: 1000})
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = b.Execute(context.Background(), fail)
			} else {
				_ = b.Execute(context.Background(), ok)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreakers(t *testing.T) {
	bs := NewBreakers(BreakerConfig{FailureThreshold: 1})
	a := bs.Get("catalog_a")
	assert.Same(t, a, bs.Get("catalog_a"))
	assert.Equal(t, "catalog_a", a.Name())

	_ = bs.Get("catalog_b").Execute(context.Background(), fail)
	_ = bs.Get("crowd").Execute(context.Background(), fail)
	assert.Equal(t, []string{"catalog_b", "crowd"}, bs.Open())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}
