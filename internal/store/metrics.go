package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the store collectors.
type Metrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics registers the store collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schooldash_store_operations_total",
			Help: "Store operations by entity, operation and outcome.",
		}, []string{"entity", "op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schooldash_store_operation_seconds",
			Help:    "Store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity", "op"}),
	}
	reg.MustRegister(m.ops, m.latency)
	return m
}

// Outcome classifies err into a metric label.
func Outcome(err error) string {
	var (
		verr *ValidationError
		berr *PartialBatchError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &berr):
		return "partial"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "error"
	}
}

func (m *Metrics) observe(entity, op string, start time.Time, err error) {
	m.ops.WithLabelValues(entity, op, Outcome(err)).Inc()
	m.latency.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
}

type instrumented[T any] struct {
	entity string
	next   EntityStore[T]
	m      *Metrics
}

// Instrument wraps s so every call is counted and timed.
func Instrument[T any](entity string, s EntityStore[T], m *Metrics) EntityStore[T] {
	if m == nil {
		return s
	}
	return &instrumented[T]{entity: entity, next: s, m: m}
}

func (i *instrumented[T]) List(ctx context.Context) (out []T, err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "list", start, err) }(time.Now())
	return i.next.List(ctx)
}

func (i *instrumented[T]) Get(ctx context.Context, id int) (out T, err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "get", start, err) }(time.Now())
	return i.next.Get(ctx, id)
}

func (i *instrumented[T]) Create(ctx context.Context, draft T) (out T, err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "create", start, err) }(time.Now())
	return i.next.Create(ctx, draft)
}

func (i *instrumented[T]) Update(ctx context.Context, id int, draft T) (out T, err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "update", start, err) }(time.Now())
	return i.next.Update(ctx, id, draft)
}

func (i *instrumented[T]) Delete(ctx context.Context, id int) (ok bool, err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "delete", start, err) }(time.Now())
	return i.next.Delete(ctx, id)
}

func (i *instrumented[T]) CreateBatch(ctx context.Context, drafts []T) (res BatchResult[T], err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "create_batch", start, err) }(time.Now())
	return i.next.CreateBatch(ctx, drafts)
}

func (i *instrumented[T]) UpdateBatch(ctx context.Context, items []T) (res BatchResult[T], err error) {
	defer func(start time.Time) { i.m.observe(i.entity, "update_batch", start, err) }(time.Now())
	return i.next.UpdateBatch(ctx, items)
}
