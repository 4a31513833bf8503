package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process EntityStore. It keeps insertion order and hands out
// copies so callers never share state with the collection.
type Memory[T any] struct {
	kind  Kind[T]
	now   func() time.Time
	mu    sync.Mutex
	items []T
}

var _ EntityStore[struct{}] = (*Memory[struct{}])(nil)

// NewMemory creates an empty in-memory store for kind.
func NewMemory[T any](kind Kind[T]) *Memory[T] {
	return &Memory[T]{kind: kind, now: time.Now}
}

// List returns a copy of the collection in insertion order.
func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	for i, it := range m.items {
		out[i] = m.kind.Clone(it)
	}
	return out, nil
}

// Get returns the entity with id.
func (m *Memory[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return zero, m.kind.notFound(id)
	}
	return m.kind.Clone(m.items[i]), nil
}

// Create validates draft, assigns the next id and appends it. The collection
// is untouched when validation fails.
func (m *Memory[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(draft)
}

func (m *Memory[T]) create(draft T) (T, error) {
	out, err := m.kind.prepare(draft, nil, m.now())
	if err != nil {
		var zero T
		return zero, err
	}
	m.kind.SetID(&out, nextID(m.kind, m.items))
	m.items = append(m.items, out)
	return m.kind.Clone(out), nil
}

// Update replaces the editable fields of id with draft. Last write wins.
func (m *Memory[T]) Update(ctx context.Context, id int, draft T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.update(id, draft)
}

func (m *Memory[T]) update(id int, draft T) (T, error) {
	var zero T
	i := m.indexOf(id)
	if i < 0 {
		return zero, m.kind.notFound(id)
	}
	prev := m.items[i]
	out, err := m.kind.prepare(draft, &prev, m.now())
	if err != nil {
		return zero, err
	}
	m.kind.SetID(&out, id)
	m.items[i] = out
	return m.kind.Clone(out), nil
}

// Delete removes id. Nothing that references it is touched.
func (m *Memory[T]) Delete(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return false, m.kind.notFound(id)
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return true, nil
}

// CreateBatch creates each draft independently.
func (m *Memory[T]) CreateBatch(ctx context.Context, drafts []T) (BatchResult[T], error) {
	return runBatch(ctx, m.kind, drafts, m.Create)
}

// UpdateBatch updates each item by its own id.
func (m *Memory[T]) UpdateBatch(ctx context.Context, items []T) (BatchResult[T], error) {
	return runBatch(ctx, m.kind, items, func(ctx context.Context, it T) (T, error) {
		return m.Update(ctx, m.kind.ID(it), it)
	})
}

func (m *Memory[T]) indexOf(id int) int {
	for i, it := range m.items {
		if m.kind.ID(it) == id {
			return i
		}
	}
	return -1
}
