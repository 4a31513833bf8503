package audit

import (
	"context"
	"log"
	"sync"

	"schooldash/internal/queue"
)

// MemorySink keeps the latest report in process.
type MemorySink struct {
	mu     sync.RWMutex
	latest *Report
}

// Save replaces the stored report.
func (s *MemorySink) Save(_ context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &r
	return nil
}

// Latest returns the stored report, if any.
func (s *MemorySink) Latest(context.Context) (Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Report{}, false, nil
	}
	return *s.latest, true, nil
}

// Runner scans on demand and stores the result.
type Runner struct {
	Scan func(ctx context.Context) (Report, error)
	Sink Sink
}

// Run performs one scan and saves it.
func (r Runner) Run(ctx context.Context) (Report, error) {
	rep, err := r.Scan(ctx)
	if err != nil {
		return rep, err
	}
	if err := r.Sink.Save(ctx, rep); err != nil {
		return rep, err
	}
	if !rep.Clean() {
		log.Printf("audit: %d dangling references", len(rep.Findings))
	}
	return rep, nil
}

// Watch rescans after every mutation seen on msgs until msgs closes or ctx
// is done. Creates and updates can introduce dangling references as well as
// deletes.
func (r Runner) Watch(ctx context.Context, msgs <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			m, err := queue.DecodeMutation(msg)
			if err != nil {
				log.Printf("audit: skipping message: %v", err)
				continue
			}
			log.Printf("audit: %s %d %s, rescanning", m.Entity, m.ID, m.Op)
			if _, err := r.Run(ctx); err != nil {
				log.Printf("audit: scan failed: %v", err)
			}
		}
	}
}
