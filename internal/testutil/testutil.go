// Package testutil provides mocks and fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// MockDriver is a mock implementation of the page driver.
type MockDriver struct {
	mock.Mock
}

// ApplyFieldWrites mocks the ApplyFieldWrites method.
func (m *MockDriver) ApplyFieldWrites(ctx context.Context, form *types.Form, trigger types.FieldGlobalID, writes []types.FieldWrite, action types.ActionPersistence) (types.FieldIDSet, error) {
	args := m.Called(ctx, form, trigger, writes, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.FieldIDSet), args.Error(1)
}

// WriteCall is one recorded ApplyFieldWrites call.
type WriteCall struct {
	Trigger types.FieldGlobalID
	Writes  []types.FieldWrite
	Action  types.ActionPersistence
}

// RecordingDriver applies every write and remembers each call.
type RecordingDriver struct {
	mu    sync.Mutex
	calls []WriteCall
}

// ApplyFieldWrites records the call and reports every field as written.
func (d *RecordingDriver) ApplyFieldWrites(_ context.Context, _ *types.Form, trigger types.FieldGlobalID, writes []types.FieldWrite, action types.ActionPersistence) (types.FieldIDSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, WriteCall{Trigger: trigger, Writes: append([]types.FieldWrite(nil), writes...), Action: action})
	applied := make(types.FieldIDSet, len(writes))
	for _, w := range writes {
		applied.Add(w.FieldID)
	}
	return applied, nil
}

// Calls returns the recorded calls.
func (d *RecordingDriver) Calls() []WriteCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]WriteCall(nil), d.calls...)
}

// Last returns the most recent call.
func (d *RecordingDriver) Last() (WriteCall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return WriteCall{}, false
	}
	return d.calls[len(d.calls)-1], true
}

// StaticClassifier classifies fields by name and puts every field in one
// section per filling product.
type StaticClassifier map[string]types.FieldType

// ClassifyFields looks up each field's name.
func (c StaticClassifier) ClassifyFields(form *types.Form) map[types.FieldGlobalID]types.FieldType {
	out := make(map[types.FieldGlobalID]types.FieldType, len(form.Fields))
	for i := range form.Fields {
		out[form.Fields[i].GlobalID] = c[form.Fields[i].Name]
	}
	return out
}

// AssignSections names sections after the field's product.
func (c StaticClassifier) AssignSections(form *types.Form, fieldTypes map[types.FieldGlobalID]types.FieldType) map[types.FieldGlobalID]string {
	out := make(map[types.FieldGlobalID]string, len(form.Fields))
	for i := range form.Fields {
		fid := form.Fields[i].GlobalID
		out[fid] = fieldTypes[fid].Product().String()
	}
	return out
}
