package manager

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/domain/filling"
	"github.com/GriffinCanCode/formfill/internal/domain/history"
	"github.com/GriffinCanCode/formfill/internal/domain/refill"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formfill/internal/shared/id"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// FillRequest is the user's choice of a suggestion
type FillRequest struct {
	Action types.ActionPersistence
	// Form is the form as the driver sees it now
	Form       *types.Form
	Field      types.FieldGlobalID
	RecordGUID string
	CVC        string
	// UnmaskedNumber is the full number of a masked or virtual card, as
	// returned by the card issuer after the user verified it
	UnmaskedNumber string
	Details        types.TriggerDetails
}

// FillOutcome reports what a fill wrote
type FillOutcome struct {
	Status types.FillStatus `json:"status"`
	// Form is the cached form after the fill; nil when nothing was computed
	Form        *types.Form        `json:"form,omitempty"`
	Writes      []types.FieldWrite `json:"writes"`
	Applied     types.FieldIDSet   `json:"-"`
	Blocked     int                `json:"blocked"`
	FillEventID id.FillEventID     `json:"fill_event_id,omitempty"`
}

// minCardNumberLength is the shortest card number the networks issue
const minCardNumberLength = 12

// fillParams carries what commit needs besides the engine result
type fillParams struct {
	action  types.ActionPersistence
	trigger types.FieldGlobalID
	record  types.Record
	cvc     string
	details types.TriggerDetails
	refill  bool
}

// OnFillChosen fills the trigger field's section from the chosen record
func (m *Manager) OnFillChosen(ctx context.Context, req FillRequest) (FillOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookup(req.Form, false)
	if err != nil {
		return FillOutcome{}, err
	}
	if st.form.Field(req.Field) == nil {
		return FillOutcome{}, fmt.Errorf("%w: %s", ErrFieldNotInForm, req.Field)
	}
	action := req.Action.String()

	rec, err := m.store.LookupRecord(ctx, req.RecordGUID)
	if err != nil {
		m.log.Info("chosen record is gone",
			logging.Form(st.form.GlobalID),
			zap.String("record", req.RecordGUID),
			zap.Error(err))
		m.metrics.RecordFill(types.ProductNone.String(), action, string(types.FillStatusRecordNotFound), 0)
		return FillOutcome{Status: types.FillStatusRecordNotFound}, nil
	}
	product := rec.Kind.Product()
	if !m.enabled(product) {
		m.metrics.RecordFill(product.String(), action, string(types.FillStatusDisabled), 0)
		return FillOutcome{Status: types.FillStatusDisabled}, nil
	}

	if rec.Kind == types.RecordCreditCard && req.Action == types.ActionFill && rec.Card.IsMasked() {
		card, ok := unmaskCard(rec.Card, req.UnmaskedNumber)
		if !ok {
			m.log.Info("masked card chosen without its number",
				logging.Form(st.form.GlobalID),
				zap.String("record", req.RecordGUID),
				zap.Bool("number_given", req.UnmaskedNumber != ""))
			m.metrics.RecordFill(product.String(), action, string(types.FillStatusUnmaskRequired), 0)
			return FillOutcome{Status: types.FillStatusUnmaskRequired}, nil
		}
		rec = types.CardRecord(card)
	}

	details := req.Details
	if details.Method == "" {
		details.Method = types.MethodFullForm
	}

	var live *types.Form
	if len(req.Form.Fields) > 0 {
		live = req.Form
	}
	timer := monitoring.NewTimer(m.metrics, product.String())
	res := m.engine.Fill(filling.Request{
		Action:   req.Action,
		Form:     st.form,
		Live:     live,
		Trigger:  req.Field,
		Record:   rec,
		CVC:      req.CVC,
		Details:  details,
		FilledBy: st.filledBy,
	})
	timer.Stop()

	switch res.Status {
	case types.FillStatusStaleForm:
		m.metrics.IncStaleFormAborts()
		m.metrics.RecordFill(product.String(), action, string(res.Status), 0)
		m.log.Debug("fill aborted on stale form", logging.Form(st.form.GlobalID))
		return FillOutcome{Status: res.Status}, nil
	case types.FillStatusNothingToFill:
		m.metrics.RecordFill(product.String(), action, string(res.Status), 0)
		return FillOutcome{Status: res.Status}, nil
	}

	return m.commit(ctx, st, res, fillParams{
		action:  req.Action,
		trigger: req.Field,
		record:  rec,
		cvc:     req.CVC,
		details: details,
	}), nil
}

// unmaskCard returns a copy of the masked card carrying the full number.
// The number must end in the card's known last four digits.
func unmaskCard(card *types.CreditCard, number string) (*types.CreditCard, bool) {
	digits := types.StripCardNumber(number)
	if len(digits) < minCardNumberLength {
		return nil, false
	}
	if last := card.LastFourDigits(); last != "" && !strings.HasSuffix(digits, last) {
		return nil, false
	}
	unmasked := *card
	unmasked.Number = digits
	return &unmasked, true
}

// commit hands the engine's writes to the driver and applies the side
// effects of the fill for the fields the driver actually wrote.
func (m *Manager) commit(ctx context.Context, st *formState, res filling.Result, p fillParams) FillOutcome {
	fillID := m.ids.NewFillEventID()
	product := p.record.Kind.Product()

	applied := m.apply(ctx, res.Form, p.trigger, res.Writes, p.action)
	blocked := types.NewFieldIDSet()
	writes := make([]types.FieldWrite, 0, len(res.Writes))
	for _, w := range res.Writes {
		if applied.Contains(w.FieldID) {
			writes = append(writes, w)
		} else {
			blocked.Add(w.FieldID)
		}
	}
	for _, prior := range res.Prior {
		if !blocked.Contains(prior.FieldID) {
			continue
		}
		f := res.Form.Field(prior.FieldID)
		f.Value, f.State, f.ForceOverride = prior.Value, prior.State, false
	}
	m.metrics.AddBlockedByPolicy(len(blocked))

	out := FillOutcome{
		Status:      res.Status,
		Form:        res.Form.Clone(),
		Writes:      writes,
		Applied:     applied,
		Blocked:     len(blocked),
		FillEventID: fillID,
	}
	if len(writes) == 0 {
		out.Status = types.FillStatusNothingToFill
	}
	m.metrics.RecordFill(product.String(), p.action.String(), string(out.Status), len(writes))
	if p.action == types.ActionPreview {
		return out
	}

	st.form = res.Form
	guid := p.record.GUID()
	snapshots := make([]history.FieldSnapshot, 0, len(writes))
	for _, prior := range res.Prior {
		if blocked.Contains(prior.FieldID) {
			continue
		}
		st.filledBy[prior.FieldID] = guid
		snapshots = append(snapshots, history.FieldSnapshot{FieldID: prior.FieldID, Value: prior.Value, State: prior.State})
	}
	entry := history.Entry{
		FormID:       st.form.GlobalID,
		TriggerField: p.trigger,
		Fields:       snapshots,
		Product:      product,
		Method:       p.details.Method,
		FillEventID:  fillID,
	}

	switch {
	case p.refill:
		m.ledger.MergeRefill(entry)
	case len(writes) > 0:
		m.ledger.RecordFill(entry)
		if err := m.store.UpdateUsage(ctx, guid, m.now()); err != nil {
			m.log.Warn("failed to update record usage", zap.String("record", guid), zap.Error(err))
		}
		st.session.UserDidAutofill = true
		m.refills.SetFillingContext(&refill.FillingContext{
			FormID:         st.form.GlobalID,
			FormName:       st.form.Name,
			Record:         p.record,
			CVC:            p.cvc,
			Trigger:        p.trigger,
			Details:        p.details,
			OriginalGroups: res.Groups.Clone(),
			Filled:         st.form.Clone(),
			FillEventID:    fillID,
		})
	}

	m.logFillEvents(st.form, res, p, fillID, blocked)
	for _, o := range res.Outcomes {
		if o.Skip != types.NotSkipped {
			m.metrics.RecordSkipped(string(o.Skip))
		}
	}

	m.log.Info("form filled",
		logging.Form(st.form.GlobalID),
		logging.Product(product),
		zap.String("method", string(p.details.Method)),
		zap.Bool("refill", p.refill),
		zap.Int("filled", len(writes)),
		zap.Int("blocked", len(blocked)),
		zap.Stringer("fill_event", fillID))
	return out
}

func (m *Manager) logFillEvents(form *types.Form, res filling.Result, p fillParams, fillID id.FillEventID, blocked types.FieldIDSet) {
	country := ""
	if p.record.Kind == types.RecordAddress && p.record.Address != nil {
		country = p.record.Address.CountryCode
	}
	m.recorder.Append(p.trigger, fieldlog.TriggerFillEvent{
		FillEventID: fillID,
		Product:     p.record.Kind.Product(),
		CountryCode: country,
		Method:      p.details.Method,
		IsRefill:    p.refill,
		Timestamp:   m.now(),
	})

	for _, o := range res.Outcomes {
		ev := fieldlog.FillEvent{
			FillEventID:        fillID,
			HadValueBefore:     o.HadValueBefore,
			HasValueAfter:      o.HasValueAfter,
			AutofillStateAfter: o.StateAfter,
			SkipReason:         o.Skip,
			Method:             p.details.Method,
			SkippedValueHash:   o.SkippedValueHash,
		}
		if blocked.Contains(o.FieldID) {
			ev.BlockedByIframePolicy = true
			if f := form.Field(o.FieldID); f != nil {
				ev.HasValueAfter = f.Value != ""
				ev.AutofillStateAfter = f.State
			}
		}
		m.recorder.Append(o.FieldID, ev)
	}
}

// onRefillDue runs a fired refill task. The form may have changed or gone
// since the task was armed.
func (m *Manager) onRefillDue(task *refill.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fc, ok := m.refills.Begin(task)
	if !ok {
		return
	}
	reason := string(task.Reason)
	st, ok := m.forms[task.FormID]
	if !ok || st.form.Field(task.Trigger) == nil {
		m.metrics.RecordRefill(reason, "target_gone")
		m.log.Debug("refill target gone", logging.Form(task.FormID), zap.Stringer("task", task.ID))
		return
	}

	details := fc.Details
	details.Source = types.SourceRefill
	res := m.engine.Fill(filling.Request{
		Action:         types.ActionFill,
		Form:           st.form,
		Trigger:        task.Trigger,
		Record:         fc.Record,
		CVC:            fc.CVC,
		Details:        details,
		IsRefill:       true,
		ForcedValues:   task.ForcedValues,
		OriginalGroups: fc.OriginalGroups,
		FilledBy:       st.filledBy,
	})
	m.metrics.RecordRefill(reason, "attempted")
	if res.Status != types.FillStatusFilled {
		m.log.Debug("refill wrote nothing",
			logging.Form(task.FormID),
			zap.String("status", string(res.Status)))
		return
	}

	m.commit(context.Background(), st, res, fillParams{
		action:  types.ActionFill,
		trigger: task.Trigger,
		record:  fc.Record,
		cvc:     fc.CVC,
		details: details,
		refill:  true,
	})
}
