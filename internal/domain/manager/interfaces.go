package manager

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

var (
	// ErrUnknownForm is returned when an operation names a form that was
	// never seen and no snapshot was supplied to parse
	ErrUnknownForm = errors.New("unknown form")
	// ErrFieldNotInForm is returned when the trigger field is not part of the form
	ErrFieldNotInForm = errors.New("field not in form")
)

// Store provides the records offered for filling
type Store interface {
	LookupRecord(ctx context.Context, guid string) (types.Record, error)
	// ListRecords returns records in storage order; ranking is not its job
	ListRecords(ctx context.Context, kind types.RecordKind) ([]types.Record, error)
	UpdateUsage(ctx context.Context, guid string, now time.Time) error
	RemoveRecord(ctx context.Context, guid string) error
}

// Classifier assigns field types and sections
type Classifier interface {
	ClassifyFields(form *types.Form) map[types.FieldGlobalID]types.FieldType
	AssignSections(form *types.Form, fieldTypes map[types.FieldGlobalID]types.FieldType) map[types.FieldGlobalID]string
}

// PredictionSource is implemented by classifiers that can explain their
// answer per prediction source
type PredictionSource interface {
	Predictions(form *types.Form) map[types.FieldGlobalID][]fieldlog.PredictionEvent
}

// Driver writes values into the page. It returns the subset of fields it
// was allowed to write, which may be smaller than what was requested.
type Driver interface {
	ApplyFieldWrites(ctx context.Context, form *types.Form, trigger types.FieldGlobalID, writes []types.FieldWrite, action types.ActionPersistence) (types.FieldIDSet, error)
}
