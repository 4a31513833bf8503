package school

import (
	"context"

	"schooldash/internal/audit"
)

// Audit scans the current collections for dangling references.
func (s *Service) Audit(ctx context.Context) (audit.Report, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return audit.Report{}, err
	}
	return audit.Scan(snap.Students, snap.Classes, snap.Grades, snap.Attendance, s.now()), nil
}
