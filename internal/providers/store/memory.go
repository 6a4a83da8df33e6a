package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// ErrRecordNotFound is returned when a GUID does not resolve
var ErrRecordNotFound = errors.New("record not found")

// Memory is an in-memory record store keeping insertion order
type Memory struct {
	mu      sync.RWMutex
	records []types.Record
	index   map[string]int
}

// NewMemory creates a store holding the given records
func NewMemory(records ...types.Record) (*Memory, error) {
	m := &Memory{index: make(map[string]int)}
	for _, rec := range records {
		if _, err := m.Add(rec); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add stores a copy of the record and returns its GUID. Records without
// one get a fresh UUID.
func (m *Memory) Add(rec types.Record) (string, error) {
	rec = clone(rec)
	switch {
	case rec.Kind == types.RecordAddress && rec.Address != nil:
		if rec.Address.GUID == "" {
			rec.Address.GUID = uuid.NewString()
		}
	case rec.Kind == types.RecordCreditCard && rec.Card != nil:
		if rec.Card.GUID == "" {
			rec.Card.GUID = uuid.NewString()
		}
	default:
		return "", fmt.Errorf("record of kind %q has no payload", rec.Kind)
	}

	guid := rec.GUID()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.index[guid]; exists {
		return "", fmt.Errorf("duplicate record %s", guid)
	}
	m.index[guid] = len(m.records)
	m.records = append(m.records, rec)
	return guid, nil
}

// RemoveRecord deletes a record
func (m *Memory) RemoveRecord(_ context.Context, guid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[guid]
	if !ok {
		return fmt.Errorf("remove %s: %w", guid, ErrRecordNotFound)
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	delete(m.index, guid)
	for j := i; j < len(m.records); j++ {
		m.index[m.records[j].GUID()] = j
	}
	return nil
}

// LookupRecord returns a copy of the record
func (m *Memory) LookupRecord(_ context.Context, guid string) (types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[guid]
	if !ok {
		return types.Record{}, fmt.Errorf("lookup %s: %w", guid, ErrRecordNotFound)
	}
	return clone(m.records[i]), nil
}

// ListRecords returns copies of every record of the kind in storage order
func (m *Memory) ListRecords(_ context.Context, kind types.RecordKind) ([]types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Record, 0, len(m.records))
	for _, rec := range m.records {
		if rec.Kind == kind {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

// UpdateUsage bumps the use count and use date after a committed fill
func (m *Memory) UpdateUsage(_ context.Context, guid string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[guid]
	if !ok {
		return fmt.Errorf("update usage %s: %w", guid, ErrRecordNotFound)
	}
	rec := &m.records[i]
	switch rec.Kind {
	case types.RecordAddress:
		rec.Address.UseCount++
		rec.Address.UseDate = now
	case types.RecordCreditCard:
		rec.Card.UseCount++
		rec.Card.UseDate = now
	}
	return nil
}

// Len returns the number of stored records
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func clone(rec types.Record) types.Record {
	if rec.Address != nil {
		a := *rec.Address
		rec.Address = &a
	}
	if rec.Card != nil {
		c := *rec.Card
		rec.Card = &c
	}
	return rec
}
