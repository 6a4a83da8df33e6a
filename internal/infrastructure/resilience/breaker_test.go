package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFailed = errors.New("failed")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func outcome(success bool) func() error {
	return func() error {
		if success {
			return nil
		}
		return errFailed
	}
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		trip     func(Counts) bool
		calls    []bool // true = success
		expected State
	}{
		{
			name:     "stays closed on successes",
			calls:    []bool{true, true, true},
			expected: StateClosed,
		},
		{
			name:     "opens after consecutive failures",
			trip:     func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
			calls:    []bool{false, false, false},
			expected: StateOpen,
		},
		{
			name:     "a success resets the failure streak",
			trip:     func(c Counts) bool { return c.ConsecutiveFailures >= 2 },
			calls:    []bool{false, true, false},
			expected: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			b := New("test", Settings{Trip: tt.trip, Now: clock.Now})
			for _, ok := range tt.calls {
				_ = b.Do(outcome(ok))
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	b := New("test", Settings{Now: newFakeClock().Now})

	require.NoError(t, b.Do(outcome(true)))
	counts := b.Counts()
	assert.Equal(t, uint32(1), counts.Calls)
	assert.Equal(t, uint32(1), counts.Successes)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)

	assert.ErrorIs(t, b.Do(outcome(false)), errFailed)
	counts = b.Counts()
	assert.Equal(t, uint32(2), counts.Calls)
	assert.Equal(t, uint32(1), counts.Failures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Zero(t, counts.ConsecutiveSuccesses)
}

func TestBreakerWindowResetsCounts(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Window: time.Minute,
		Trip:   func(c Counts) bool { return c.ConsecutiveFailures >= 2 },
		Now:    clock.Now,
	})

	_ = b.Do(outcome(false))
	clock.Advance(2 * time.Minute)
	_ = b.Do(outcome(false))

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().ConsecutiveFailures)
}

func TestBreakerFailsFastWhenOpen(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Trip: func(c Counts) bool { return c.ConsecutiveFailures >= 2 },
		Now:  clock.Now,
	})
	_ = b.Do(outcome(false))
	_ = b.Do(outcome(false))
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenTrials(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		HalfOpenCalls: 2,
		Cooldown:      time.Second,
		Trip:          func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:           clock.Now,
	})
	_ = b.Do(outcome(false))
	require.Equal(t, StateOpen, b.State())

	clock.Advance(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Do(outcome(true)))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(outcome(true)))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Cooldown: time.Second,
		Trip:     func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:      clock.Now,
	})
	_ = b.Do(outcome(false))
	clock.Advance(time.Second)

	assert.ErrorIs(t, b.Do(outcome(false)), errFailed)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerCallbacks(t *testing.T) {
	clock := newFakeClock()
	var transitions []string
	b := New("test", Settings{
		Cooldown: time.Second,
		Trip:     func(c Counts) bool { return c.ConsecutiveFailures >= 2 },
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
		Now: clock.Now,
	})

	_ = b.Do(outcome(false))
	_ = b.Do(outcome(false))
	clock.Advance(time.Second)
	_ = b.Do(outcome(true))

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestCallReturnsValue(t *testing.T) {
	b := New("test", Settings{Now: newFakeClock().Now})

	v, err := Call(b, func() (string, error) { return "alias", nil })
	require.NoError(t, err)
	assert.Equal(t, "alias", v)

	_, err = Call(b, func() (int, error) { return 0, errFailed })
	assert.ErrorIs(t, err, errFailed)
}

func TestPanicCountsAsFailure(t *testing.T) {
	b := New("test", Settings{Now: newFakeClock().Now})

	assert.Panics(t, func() {
		_ = b.Do(func() error { panic("boom") })
	})
	assert.Equal(t, uint32(1), b.Counts().Failures)
}
