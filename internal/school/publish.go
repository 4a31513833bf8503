package school

import (
	"context"
	"log"
	"time"

	"schooldash/internal/queue"
	"schooldash/internal/store"
)

// publishing announces every successful mutation of the wrapped store.
// Publish failures are logged; the mutation itself has already happened.
type publishing[T any] struct {
	store.EntityStore[T]
	kind   store.Kind[T]
	events queue.Publisher
	now    func() time.Time
}

// Publishing wraps s so creates, updates and deletes emit queue.Mutation
// events on events.
func Publishing[T any](kind store.Kind[T], s store.EntityStore[T], events queue.Publisher) store.EntityStore[T] {
	if events == nil {
		return s
	}
	return &publishing[T]{EntityStore: s, kind: kind, events: events, now: time.Now}
}

func (p *publishing[T]) emit(ctx context.Context, op string, id int) {
	msg, err := queue.Mutation{Entity: p.kind.Name, Op: op, ID: id, At: p.now().UTC()}.Message()
	if err == nil {
		err = p.events.Publish(ctx, msg)
	}
	if err != nil {
		log.Printf("publish %s %s %d: %v", p.kind.Name, op, id, err)
	}
}

func (p *publishing[T]) Create(ctx context.Context, draft T) (T, error) {
	out, err := p.EntityStore.Create(ctx, draft)
	if err == nil {
		p.emit(ctx, queue.OpCreated, p.kind.ID(out))
	}
	return out, err
}

func (p *publishing[T]) Update(ctx context.Context, id int, draft T) (T, error) {
	out, err := p.EntityStore.Update(ctx, id, draft)
	if err == nil {
		p.emit(ctx, queue.OpUpdated, id)
	}
	return out, err
}

func (p *publishing[T]) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := p.EntityStore.Delete(ctx, id)
	if err == nil && ok {
		p.emit(ctx, queue.OpDeleted, id)
	}
	return ok, err
}

func (p *publishing[T]) CreateBatch(ctx context.Context, drafts []T) (store.BatchResult[T], error) {
	res, err := p.EntityStore.CreateBatch(ctx, drafts)
	for _, it := range res.Succeeded {
		p.emit(ctx, queue.OpCreated, p.kind.ID(it))
	}
	return res, err
}

func (p *publishing[T]) UpdateBatch(ctx context.Context, items []T) (store.BatchResult[T], error) {
	res, err := p.EntityStore.UpdateBatch(ctx, items)
	for _, it := range res.Succeeded {
		p.emit(ctx, queue.OpUpdated, p.kind.ID(it))
	}
	return res, err
}
