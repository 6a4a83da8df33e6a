package refill

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/formfill/internal/shared/id"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Timer is a pending one-shot callback
type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot callbacks
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Task is a scheduled refill. It carries copies of everything the refill
// needs so it never reaches back into a form that may be gone.
type Task struct {
	ID           id.TaskID
	FormID       types.FormGlobalID
	Trigger      types.FieldGlobalID
	Reason       Reason
	ForcedValues map[types.FieldGlobalID]string

	cancelled atomic.Bool
	timer     Timer
}

// Cancel stops the timer and marks the task so a callback already in
// flight does nothing.
func (t *Task) Cancel() {
	t.cancelled.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Cancelled reports whether Cancel was called
func (t *Task) Cancelled() bool {
	return t.cancelled.Load()
}

// TimerScheduler runs callbacks on real timers
type TimerScheduler struct{}

// AfterFunc implements Scheduler
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// ManualScheduler fires callbacks only when its clock is advanced. Hosts
// that drive time themselves and tests use it.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
	seq     int
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Time
	seq     int
	fn      func()
	stopped bool
}

// NewManualScheduler creates a scheduler whose clock starts at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the scheduler's clock
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc implements Scheduler
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now.Add(d), seq: s.seq, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// Stop implements Timer
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Pending returns the number of armed, unstopped timers
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward and runs every due callback in deadline
// order on the calling goroutine.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	var due, rest []*manualTimer
	for _, t := range s.pending {
		switch {
		case t.stopped:
		case !t.at.After(s.now):
			t.stopped = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.fn()
	}
}
