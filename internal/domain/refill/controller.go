package refill

import (
	"time"

	"github.com/GriffinCanCode/formfill/internal/shared/id"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

const (
	// DefaultLimit is how long after a fill a refill may still be scheduled
	DefaultLimit = time.Second
	// DefaultDelay lets a dynamic form settle before the refill runs
	DefaultDelay = 200 * time.Millisecond
)

// Reason is why a refill is requested
type Reason string

const (
	ReasonFormChanged             Reason = "form_changed"
	ReasonSelectOptionsChanged    Reason = "select_options_changed"
	ReasonExpirationDateFormatted Reason = "expiration_date_formatted"
)

// State is the refill state of a form
type State int

const (
	StateNoFill State = iota
	StateFilled
	StateRefillScheduled
	StateRefillAttempted
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateFilled:
		return "filled"
	case StateRefillScheduled:
		return "refill_scheduled"
	case StateRefillAttempted:
		return "refill_attempted"
	default:
		return "no_fill"
	}
}

// FillingContext is the per-form memory of the last user-initiated fill
type FillingContext struct {
	FormID         types.FormGlobalID
	FormName       string
	Record         types.Record
	CVC            string
	Trigger        types.FieldGlobalID
	Details        types.TriggerDetails
	FilledAt       time.Time
	OriginalGroups types.GroupSet
	// Filled is the form as it looked right after the fill
	Filled       *types.Form
	ForcedValues map[types.FieldGlobalID]string
	FillEventID  id.FillEventID

	AttemptedRefill bool
	clearedReported bool
	task            *Task
}

// State derives the state machine position of the context
func (fc *FillingContext) State() State {
	switch {
	case fc.AttemptedRefill:
		return StateRefillAttempted
	case fc.task != nil && !fc.task.Cancelled():
		return StateRefillScheduled
	default:
		return StateFilled
	}
}

// Options tune the controller
type Options struct {
	Limit time.Duration
	Delay time.Duration
	Now   func() time.Time
}

// DefaultOptions returns the production timings
func DefaultOptions() Options {
	return Options{Limit: DefaultLimit, Delay: DefaultDelay, Now: time.Now}
}

// Analysis is the verdict on a script-driven change of an autofilled value
type Analysis struct {
	WithinWindow bool
	// ClearedFirst is set for the first clear observed for the fill
	ClearedFirst bool
	// Repaired holds the forced expiration value when a repair refill was scheduled
	Repaired string
	Task     *Task
}

// Controller decides when a filled form gets its one refill. It is not safe
// for concurrent use; the owner serializes calls, including those made from
// the fire callback.
type Controller struct {
	opts     Options
	sched    Scheduler
	fire     func(*Task)
	ids      *id.Generator
	contexts map[types.FormGlobalID]*FillingContext
}

// NewController creates a controller. fire runs on the scheduler's
// goroutine when a refill task comes due.
func NewController(opts Options, sched Scheduler, fire func(*Task)) *Controller {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Delay < 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Controller{
		opts:     opts,
		sched:    sched,
		fire:     fire,
		ids:      id.Default(),
		contexts: make(map[types.FormGlobalID]*FillingContext),
	}
}

// SetFillingContext starts a new fill generation for the form, dropping any
// pending refill of the previous one.
func (c *Controller) SetFillingContext(fc *FillingContext) {
	if old, ok := c.contexts[fc.FormID]; ok && old.task != nil {
		old.task.Cancel()
	}
	if fc.FilledAt.IsZero() {
		fc.FilledAt = c.opts.Now()
	}
	if fc.ForcedValues == nil {
		fc.ForcedValues = make(map[types.FieldGlobalID]string)
	}
	c.contexts[fc.FormID] = fc
}

// FillingContext returns the context of the form's last fill
func (c *Controller) FillingContext(form types.FormGlobalID) (*FillingContext, bool) {
	fc, ok := c.contexts[form]
	return fc, ok
}

// State returns the refill state of the form
func (c *Controller) State(form types.FormGlobalID) State {
	fc, ok := c.contexts[form]
	if !ok {
		return StateNoFill
	}
	return fc.State()
}

// ShouldTriggerRefill reports whether the form may be refilled now. The
// form must carry the non-empty name it was filled under, be within the
// time limit, not have been refilled yet and, for structural changes,
// actually differ from the filled snapshot.
func (c *Controller) ShouldTriggerRefill(form *types.Form, reason Reason) bool {
	fc, ok := c.contexts[form.GlobalID]
	if !ok || fc.AttemptedRefill {
		return false
	}
	if fc.FormName == "" || fc.FormName != form.Name {
		return false
	}
	if c.opts.Now().Sub(fc.FilledAt) >= c.opts.Limit {
		return false
	}
	if reason == ReasonFormChanged && fc.Filled != nil && fc.Filled.Signature() == form.Signature() {
		return false
	}
	return true
}

// ScheduleRefill arms the refill timer for the form. A pending timer is
// replaced, never duplicated.
func (c *Controller) ScheduleRefill(form *types.Form, reason Reason) (*Task, bool) {
	if !c.ShouldTriggerRefill(form, reason) {
		return nil, false
	}
	fc := c.contexts[form.GlobalID]
	if fc.task != nil {
		fc.task.Cancel()
	}

	forced := make(map[types.FieldGlobalID]string, len(fc.ForcedValues))
	for k, v := range fc.ForcedValues {
		forced[k] = v
	}
	task := &Task{
		ID:           c.ids.NewTaskID(),
		FormID:       fc.FormID,
		Trigger:      fc.Trigger,
		Reason:       reason,
		ForcedValues: forced,
	}
	fc.task = task
	task.timer = c.sched.AfterFunc(c.opts.Delay, func() {
		if task.Cancelled() || c.fire == nil {
			return
		}
		c.fire(task)
	})
	return task, true
}

// Begin claims a fired task. It returns the context to refill from, or
// false when the task was cancelled or superseded. A claimed task moves the
// form to the terminal attempted state.
func (c *Controller) Begin(task *Task) (*FillingContext, bool) {
	if task == nil || task.Cancelled() {
		return nil, false
	}
	fc, ok := c.contexts[task.FormID]
	if !ok || fc.task != task {
		return nil, false
	}
	fc.task = nil
	fc.AttemptedRefill = true
	return fc, true
}

// AnalyzeJavaScriptChangedAutofilledValue inspects a value the page's
// script changed after a fill. A clear within the time limit is reported
// once per fill. An expiration date whose year the script truncated is
// repaired by scheduling a refill that forces the corrected value.
func (c *Controller) AnalyzeJavaScriptChangedAutofilledValue(form *types.Form, field *types.Field, oldValue string) Analysis {
	fc, ok := c.contexts[form.GlobalID]
	if !ok {
		return Analysis{}
	}
	var out Analysis
	out.WithinWindow = c.opts.Now().Sub(fc.FilledAt) < c.opts.Limit
	if out.WithinWindow && field.Value == "" && !fc.clearedReported {
		fc.clearedReported = true
		out.ClearedFirst = true
	}

	if field.Type != types.CreditCardExpDate2DigitYear && field.Type != types.CreditCardExpDate4DigitYear {
		return out
	}
	repaired, ok := RepairExpiration(oldValue, field.Value)
	if !ok || !c.ShouldTriggerRefill(form, ReasonExpirationDateFormatted) {
		return out
	}
	fc.ForcedValues[field.GlobalID] = repaired
	task, ok := c.ScheduleRefill(form, ReasonExpirationDateFormatted)
	if !ok {
		delete(fc.ForcedValues, field.GlobalID)
		return out
	}
	out.Repaired = repaired
	out.Task = task
	return out
}

// Forget cancels any pending refill and drops the form's context
func (c *Controller) Forget(form types.FormGlobalID) {
	if fc, ok := c.contexts[form]; ok {
		if fc.task != nil {
			fc.task.Cancel()
		}
		delete(c.contexts, form)
	}
}

// Reset forgets every form
func (c *Controller) Reset() {
	for form := range c.contexts {
		c.Forget(form)
	}
}

// Len returns the number of tracked forms
func (c *Controller) Len() int {
	return len(c.contexts)
}
