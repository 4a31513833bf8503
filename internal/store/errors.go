package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("store unreachable")
)

// NotFoundError reports an id absent from an entity collection.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError lists the fields of a draft that are missing or malformed.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

// BatchFailure describes one item of a batch that the store rejected.
type BatchFailure struct {
	Index   int    `json:"index"`
	ID      int    `json:"id,omitempty"`
	Message string `json:"message"`
}

// BatchResult is the per-item outcome of a batch create or update.
type BatchResult[T any] struct {
	Succeeded []T            `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// Partial reports whether at least one item failed.
func (r BatchResult[T]) Partial() bool { return len(r.Failed) > 0 }

// PartialBatchError is returned alongside a BatchResult when some items failed.
// Callers must reconcile Succeeded and Failed themselves.
type PartialBatchError struct {
	Entity    string
	Succeeded int
	Failed    []BatchFailure
}

func (e *PartialBatchError) Error() string {
	msg := ""
	if len(e.Failed) > 0 {
		msg = ": " + e.Failed[0].Message
	}
	return fmt.Sprintf("%s batch: %d succeeded, %d failed%s", e.Entity, e.Succeeded, len(e.Failed), msg)
}

// TransportError wraps a failure to reach or understand the backing store.
type TransportError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func batchError[T any](entity string, res BatchResult[T]) error {
	if !res.Partial() {
		return nil
	}
	return &PartialBatchError{Entity: entity, Succeeded: len(res.Succeeded), Failed: res.Failed}
}
