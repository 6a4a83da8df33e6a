package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/domain/filling"
	"github.com/GriffinCanCode/formfill/internal/domain/history"
	"github.com/GriffinCanCode/formfill/internal/domain/refill"
	"github.com/GriffinCanCode/formfill/internal/domain/suggestion"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/config"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formfill/internal/shared/id"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// Options wires the manager's collaborators
type Options struct {
	Config     config.AutofillConfig
	Store      Store
	Classifier Classifier
	// Driver may be nil, in which case every write counts as applied
	Driver      Driver
	PlusAddress suggestion.PlusAddressDelegate
	Handlers    []suggestion.Handler
	Scheduler   refill.Scheduler
	Now         func() time.Time
	Logger      *logging.Logger
	Metrics     *monitoring.Metrics
}

// Manager handles driver events for every form on a page
type Manager struct {
	cfg        config.AutofillConfig
	store      Store
	classifier Classifier
	driver     Driver
	now        func() time.Time

	generator *suggestion.Generator
	chain     *suggestion.Chain
	engine    *filling.Engine
	ledger    *history.Ledger
	refills   *refill.Controller
	recorder  *fieldlog.Recorder

	log     *logging.Logger
	metrics *monitoring.Metrics
	ids     *id.Generator

	forms map[types.FormGlobalID]*formState
	mu    sync.Mutex
}

// New creates a manager
func New(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("manager requires a record store")
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("manager requires a field classifier")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics(nil)
	}

	cfg := opts.Config
	m := &Manager{
		cfg:        cfg,
		store:      opts.Store,
		classifier: opts.Classifier,
		driver:     opts.Driver,
		now:        opts.Now,
		generator: suggestion.NewGenerator(suggestion.Options{
			ObfuscationLength: cfg.ObfuscationLength,
			NameBeforeDigits:  cfg.NameBeforeDigits,
			DisusedCardWindow: cfg.DisusedCardWindow,
			Now:               opts.Now,
		}, opts.PlusAddress),
		chain: suggestion.NewChain(opts.Handlers...),
		engine: filling.NewEngine(filling.Options{
			SkipPrefilled: cfg.SkipPrefilled,
			FillPhone:     cfg.FillPhone,
		}),
		ledger:   history.NewLedger(cfg.HistoryEntries),
		recorder: fieldlog.NewRecorder(),
		log:      opts.Logger.Named("manager"),
		metrics:  opts.Metrics,
		ids:      id.Default(),
		forms:    make(map[types.FormGlobalID]*formState),
	}
	m.refills = refill.NewController(refill.Options{
		Limit: cfg.RefillLimit,
		Delay: cfg.RefillDelay,
		Now:   opts.Now,
	}, opts.Scheduler, m.onRefillDue)
	return m, nil
}

// OnFormsSeen classifies and caches the forms. A form that was filled
// moments ago and came back with a different structure gets a refill.
func (m *Manager) OnFormsSeen(ctx context.Context, forms []*types.Form) error {
	if len(forms) > utils.MaxFormsPerRequest {
		return fmt.Errorf("%d forms exceed the limit of %d", len(forms), utils.MaxFormsPerRequest)
	}
	for _, form := range forms {
		if err := validate(form); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, form := range forms {
		st := m.parse(form)
		if task, ok := m.refills.ScheduleRefill(st.form, refill.ReasonFormChanged); ok {
			m.metrics.RecordRefill(string(task.Reason), "scheduled")
			m.log.Info("refill scheduled",
				logging.Form(form.GlobalID),
				zap.String("reason", string(task.Reason)),
				zap.Stringer("task", task.ID))
		}
	}
	m.metrics.SetFormsCached(len(m.forms))
	return nil
}

// parse classifies a snapshot and replaces the cached form. Session state
// and fill bookkeeping survive re-parsing.
func (m *Manager) parse(snapshot *types.Form) *formState {
	form := snapshot.Clone()

	fieldTypes := m.classifier.ClassifyFields(form)
	for i := range form.Fields {
		form.Fields[i].Type = fieldTypes[form.Fields[i].GlobalID]
	}
	sections := m.classifier.AssignSections(form, fieldTypes)
	for i := range form.Fields {
		form.Fields[i].Section = sections[form.Fields[i].GlobalID]
	}

	if ps, ok := m.classifier.(PredictionSource); ok {
		for fid, events := range ps.Predictions(form) {
			for _, ev := range events {
				m.recorder.AppendIfNotRepeated(fid, ev)
			}
		}
	}

	decisions := filling.Rationalize(form)
	for i, d := range decisions {
		m.recorder.AppendIfNotRepeated(d.FieldID, fieldlog.RationalizationEvent{
			Type:           d.After,
			Section:        form.Fields[i].Section,
			DiffersFromRaw: d.Changed(),
			Rule:           d.Rule,
		})
	}

	st, ok := m.forms[form.GlobalID]
	if !ok {
		st = newFormState(form)
		m.forms[form.GlobalID] = st
	}
	st.form = form
	st.session.observe(form)

	m.log.Debug("form parsed",
		logging.Form(form.GlobalID),
		zap.Int("fields", len(form.Fields)))
	return st
}

// lookup returns the cached state of the form, parsing the snapshot on
// demand when the form was never seen. With reparse set, a snapshot whose
// structure drifted from the cache replaces it; fills leave the cache alone
// so the engine can detect the drift.
func (m *Manager) lookup(snapshot *types.Form, reparse bool) (*formState, error) {
	if snapshot == nil {
		return nil, ErrUnknownForm
	}
	st, ok := m.forms[snapshot.GlobalID]
	if ok && (!reparse || len(snapshot.Fields) == 0 || st.form.Signature() == snapshot.Signature()) {
		return st, nil
	}
	if len(snapshot.Fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, snapshot.GlobalID)
	}
	if err := validate(snapshot); err != nil {
		return nil, err
	}
	st = m.parse(snapshot)
	m.metrics.SetFormsCached(len(m.forms))
	return st, nil
}

func validate(form *types.Form) error {
	if err := utils.ValidateForm(form); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

// syncValues copies the values the driver reports into the cached form
func syncValues(cached, snapshot *types.Form) {
	for i := range snapshot.Fields {
		live := &snapshot.Fields[i]
		f := cached.Field(live.GlobalID)
		if f == nil {
			continue
		}
		f.Value = live.Value
		f.Properties |= live.Properties
	}
}

// apply hands writes to the driver and returns the fields it wrote
func (m *Manager) apply(ctx context.Context, form *types.Form, trigger types.FieldGlobalID, writes []types.FieldWrite, action types.ActionPersistence) types.FieldIDSet {
	if m.driver == nil {
		applied := make(types.FieldIDSet, len(writes))
		for _, w := range writes {
			applied.Add(w.FieldID)
		}
		return applied
	}
	if len(writes) == 0 {
		return types.NewFieldIDSet()
	}
	applied, err := m.driver.ApplyFieldWrites(ctx, form, trigger, writes, action)
	if err != nil {
		m.log.Warn("driver rejected field writes",
			logging.Form(form.GlobalID),
			zap.Int("writes", len(writes)),
			zap.Error(err))
		return types.NewFieldIDSet()
	}
	if applied == nil {
		applied = types.NewFieldIDSet()
	}
	return applied
}

// enabled reports whether the product may be suggested or filled
func (m *Manager) enabled(product types.FillingProduct) bool {
	if m.cfg.Ablation {
		return false
	}
	switch product {
	case types.ProductAddress:
		return m.cfg.ProfileEnabled
	case types.ProductCreditCard:
		return m.cfg.PaymentsEnabled
	}
	return false
}

// OnFormsRemoved drops forms that left the page, flushing their logs
func (m *Manager) OnFormsRemoved(ctx context.Context, ids []types.FormGlobalID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, fid := range ids {
		st, ok := m.forms[fid]
		if !ok {
			continue
		}
		batch := m.recorder.Flush(st.form)
		m.metrics.RecordFieldLogEvents(batch.CountsByName())
		m.refills.Forget(fid)
		m.ledger.Forget(fid)
		delete(m.forms, fid)
		m.log.WithForm(fid).Debug("form removed", zap.Int("fields_logged", len(batch.Events)))
	}
	m.metrics.SetFormsCached(len(m.forms))
}

// RemoveRecord deletes the record behind a suggestion. Cached forms keep
// the values it already filled.
func (m *Manager) RemoveRecord(ctx context.Context, guid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.RemoveRecord(ctx, guid); err != nil {
		return fmt.Errorf("remove record: %w", err)
	}
	m.log.Info("record removed", zap.String("record", guid))
	return nil
}

// Reset forgets every form, as on navigation
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for fid, st := range m.forms {
		m.recorder.Flush(st.form)
		m.ledger.Forget(fid)
	}
	m.refills.Reset()
	m.forms = make(map[types.FormGlobalID]*formState)
	m.metrics.SetFormsCached(0)
	m.log.Debug("manager reset")
}

// Form returns a copy of the cached form
func (m *Manager) Form(fid types.FormGlobalID) (*types.Form, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.forms[fid]
	if !ok {
		return nil, false
	}
	return st.form.Clone(), true
}

// Session returns the session state of a form
func (m *Manager) Session(fid types.FormGlobalID) (SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.forms[fid]
	if !ok {
		return SessionState{}, false
	}
	return st.session, true
}

// FieldLog returns the events logged for a field so far
func (m *Manager) FieldLog(field types.FieldGlobalID) []fieldlog.Event {
	return m.recorder.Events(field)
}

// RefillState returns the refill state machine position of a form
func (m *Manager) RefillState(fid types.FormGlobalID) refill.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refills.State(fid)
}

// FormCount returns the number of cached forms
func (m *Manager) FormCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.forms)
}
