// Package id provides ULID generation for autofill bookkeeping.
//
// ULIDs are lexicographically sortable, so fill events and refill tasks
// read in creation order when dumped in logs. Each domain carries a prefix:
//   - fill_*: links every field touched by one fill operation
//   - task_*: identifies a scheduled refill
//   - req_*: identifies an HTTP request
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// FillEventID links the log events of all fields written by one fill
type FillEventID string

// TaskID identifies a scheduled refill task
type TaskID string

// RequestID identifies an API request
type RequestID string

const (
	FillEventPrefix = "fill"
	TaskPrefix      = "task"
	RequestPrefix   = "req"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewFillEventID generates a fill event id
func (g *Generator) NewFillEventID() FillEventID {
	return FillEventID(g.GenerateWithPrefix(FillEventPrefix))
}

// NewTaskID generates a refill task id
func (g *Generator) NewTaskID() TaskID {
	return TaskID(g.GenerateWithPrefix(TaskPrefix))
}

// ============================================================================
// Typed ID Generators (default generator)
// ============================================================================

// NewFillEventID generates a fill event id
func NewFillEventID() FillEventID { return Default().NewFillEventID() }

// NewTaskID generates a refill task id
func NewTaskID() TaskID { return Default().NewTaskID() }

// NewRequestID generates a request id
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id FillEventID) String() string { return string(id) }
func (id TaskID) String() string      { return string(id) }
func (id RequestID) String() string   { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed or bare ULID
func Timestamp(id string) (time.Time, error) {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '_' {
			id = id[i+1:]
			break
		}
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
