// Package frames applies fill writes under the cross-frame security policy.
package frames

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Page writes values into the live document. Implementations are expected
// to honor ForceOverride by replacing whatever the page holds.
type Page interface {
	WriteFields(ctx context.Context, form types.FormGlobalID, writes []types.FieldWrite, action types.ActionPersistence) error
}

// PolicyDriver intersects the engine's intended writes with the fields the
// trigger's frame may write, then hands the safe subset to the page.
type PolicyDriver struct {
	page Page
	log  *logging.Logger

	mu   sync.Mutex
	last map[types.FormGlobalID][]types.FieldWrite
}

// NewPolicyDriver creates a driver. page may be nil when the caller ships
// the writes to the page itself.
func NewPolicyDriver(page Page, log *logging.Logger) *PolicyDriver {
	if log == nil {
		log = logging.Nop()
	}
	return &PolicyDriver{
		page: page,
		log:  log.Named("frames"),
		last: make(map[types.FormGlobalID][]types.FieldWrite),
	}
}

// ApplyFieldWrites writes the safe subset and returns the fields written
func (d *PolicyDriver) ApplyFieldWrites(ctx context.Context, form *types.Form, trigger types.FieldGlobalID, writes []types.FieldWrite, action types.ActionPersistence) (types.FieldIDSet, error) {
	safe := SafeFields(form, trigger)

	allowed := make([]types.FieldWrite, 0, len(writes))
	for _, w := range writes {
		if safe.Contains(w.FieldID) {
			allowed = append(allowed, w)
		}
	}
	if blocked := len(writes) - len(allowed); blocked > 0 {
		d.log.Debug("writes withheld by frame policy",
			logging.Form(form.GlobalID),
			logging.Field(trigger),
			zap.Int("blocked", blocked))
	}

	if d.page != nil && len(allowed) > 0 {
		if err := d.page.WriteFields(ctx, form.GlobalID, allowed, action); err != nil {
			return nil, fmt.Errorf("write fields: %w", err)
		}
	}

	applied := make(types.FieldIDSet, len(allowed))
	for _, w := range allowed {
		applied.Add(w.FieldID)
	}

	d.mu.Lock()
	d.last[form.GlobalID] = allowed
	d.mu.Unlock()
	return applied, nil
}

// LastWrites returns the writes most recently applied to the form
func (d *PolicyDriver) LastWrites(form types.FormGlobalID) ([]types.FieldWrite, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	writes, ok := d.last[form]
	if !ok {
		return nil, false
	}
	return append([]types.FieldWrite(nil), writes...), true
}

// Forget drops the remembered writes of the form
func (d *PolicyDriver) Forget(form types.FormGlobalID) {
	d.mu.Lock()
	delete(d.last, form)
	d.mu.Unlock()
}

// SafeFields returns the fields the trigger's frame may write: those sharing
// the trigger's origin, plus non-sensitive fields of the main frame origin.
// A field without an origin belongs to the main frame.
func SafeFields(form *types.Form, trigger types.FieldGlobalID) types.FieldIDSet {
	safe := make(types.FieldIDSet, len(form.Fields))
	mainOrigin := normalizeOrigin(form.MainFrameOrigin)

	triggerOrigin := mainOrigin
	if tf := form.Field(trigger); tf != nil && tf.Origin != "" {
		triggerOrigin = normalizeOrigin(tf.Origin)
	}

	for i := range form.Fields {
		f := &form.Fields[i]
		origin := mainOrigin
		if f.Origin != "" {
			origin = normalizeOrigin(f.Origin)
		}
		switch {
		case origin == triggerOrigin:
			safe.Add(f.GlobalID)
		case origin == mainOrigin && !f.Type.IsSensitive():
			safe.Add(f.GlobalID)
		}
	}
	return safe
}

// normalizeOrigin reduces a URL or origin to lower-case scheme://host
func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
