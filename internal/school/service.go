package school

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"schooldash/internal/filter"
	"schooldash/internal/model"
	"schooldash/internal/queue"
	"schooldash/internal/report"
	"schooldash/internal/roster"
	"schooldash/internal/store"
	"schooldash/internal/view"
)

// Dashboard limits.
const (
	RecentGradeCount = 5
	TrendMonths      = 4
)

// Service runs the dashboard pipeline over a set of stores.
type Service struct {
	// Stores publish a mutation event for every successful write.
	Stores store.Stores

	dropped prometheus.Counter
	now     func() time.Time
}

// New wraps stores so that writes are announced on events. A nil events
// disables publishing.
func New(stores store.Stores, events queue.Publisher) *Service {
	return &Service{
		Stores: store.Stores{
			Students:   Publishing(store.StudentKind, stores.Students, events),
			Classes:    Publishing(store.ClassKind, stores.Classes, events),
			Grades:     Publishing(store.GradeKind, stores.Grades, events),
			Attendance: Publishing(store.AttendanceKind, stores.Attendance, events),
		},
		now: time.Now,
	}
}

// WithDroppedCounter reports unresolved references on c.
func (s *Service) WithDroppedCounter(c prometheus.Counter) *Service {
	s.dropped = c
	return s
}

// Snapshot is one consistent read of the four collections.
type Snapshot struct {
	Students   []model.Student
	Classes    []model.ClassSection
	Grades     []model.Grade
	Attendance []model.AttendanceRecord
	Roster     *roster.Roster
}

// Load fetches the four collections concurrently. The first failure cancels
// the rest and is returned as is.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Students, err = s.Stores.Students.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Classes, err = s.Stores.Classes.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Grades, err = s.Stores.Grades.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Attendance, err = s.Stores.Attendance.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.Roster = roster.New(snap.Students, snap.Classes, snap.Grades)
	if s.dropped != nil {
		snap.Roster.WithCounter(s.dropped)
	}
	return snap, nil
}

// DashboardStats are the headline counters of the dashboard.
type DashboardStats struct {
	ActiveStudents  int `json:"active_students"`
	PendingStudents int `json:"pending_students"`
	TotalClasses    int `json:"total_classes"`
	AttendanceRate  int `json:"attendance_rate"`
}

// Dashboard is the landing page data.
type Dashboard struct {
	Stats        DashboardStats  `json:"stats"`
	RecentGrades []view.GradeRow `json:"recent_grades"`
}

// Dashboard computes the landing page.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	o := report.NewOverview(snap.Students, snap.Classes, snap.Grades, snap.Attendance)
	return Dashboard{
		Stats: DashboardStats{
			ActiveStudents:  o.ActiveStudents,
			PendingStudents: o.PendingStudents,
			TotalClasses:    o.TotalClasses,
			AttendanceRate:  o.AttendanceRate,
		},
		RecentGrades: view.RecentGrades(snap.Roster, snap.Grades, RecentGradeCount),
	}, nil
}

// StudentList is the filtered student table.
type StudentList struct {
	Rows          []view.StudentRow `json:"rows"`
	Total         int               `json:"total"`
	Active        int               `json:"active"`
	Pending       int               `json:"pending"`
	ActiveFilters int               `json:"active_filters"`
	Sort          report.SortState  `json:"sort"`
}

// Students filters, sorts and projects the student table.
func (s *Service) Students(ctx context.Context, c filter.StudentCriteria, sort report.SortState) (StudentList, error) {
	if sort.Field == "" {
		sort.Field = report.DefaultStudentSort
	}
	snap, err := s.Load(ctx)
	if err != nil {
		return StudentList{}, err
	}
	matched := filter.Students(snap.Students, snap.Roster, c)
	sorted, err := report.SortStudents(matched, sort)
	if err != nil {
		return StudentList{}, err
	}
	return StudentList{
		Rows:          view.StudentRows(snap.Roster, sorted),
		Total:         len(snap.Students),
		Active:        report.CountStatus(snap.Students, model.StatusActive),
		Pending:       report.CountStatus(snap.Students, model.StatusPending),
		ActiveFilters: c.ActiveFilters(),
		Sort:          sort,
	}, nil
}

// GradeBook is the filtered grade table.
type GradeBook struct {
	Rows          []view.GradeRow `json:"rows"`
	Count         int             `json:"count"`
	ClassAverage  int             `json:"class_average"`
	HighAchievers int             `json:"high_achievers"`
	Categories    []string        `json:"categories"`
}

// Grades filters and projects grades. The average covers the filtered rows;
// categories cover every grade.
func (s *Service) Grades(ctx context.Context, c filter.GradeCriteria) (GradeBook, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return GradeBook{}, err
	}
	matched := filter.Grades(snap.Grades, snap.Roster, c)
	return GradeBook{
		Rows:          view.GradeRows(snap.Roster, matched),
		Count:         len(matched),
		ClassAverage:  report.GradeAverage(matched),
		HighAchievers: report.HighAchievers(matched),
		Categories:    report.Categories(snap.Grades),
	}, nil
}

// ClassList is the class card view.
type ClassList struct {
	Cards            []view.ClassCard `json:"cards"`
	SubjectCount     int              `json:"subject_count"`
	AverageClassSize int              `json:"average_class_size"`
}

// Classes projects every class as a card.
func (s *Service) Classes(ctx context.Context) (ClassList, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return ClassList{}, err
	}
	return ClassList{
		Cards:            view.ClassCards(snap.Roster, snap.Classes),
		SubjectCount:     report.SubjectCount(snap.Classes),
		AverageClassSize: report.AverageClassSize(snap.Classes),
	}, nil
}

// Reports is the reporting page.
type Reports struct {
	Overview     report.Overview           `json:"overview"`
	Distribution []report.BandCount        `json:"distribution"`
	Classes      []report.ClassPerformance `json:"classes"`
	Students     []report.StudentSummary   `json:"students"`
	Trend        []report.MonthRate        `json:"trend"`
}

// Reports computes every report. months bounds the attendance trend and
// defaults to TrendMonths.
func (s *Service) Reports(ctx context.Context, months int) (Reports, error) {
	if months <= 0 {
		months = TrendMonths
	}
	snap, err := s.Load(ctx)
	if err != nil {
		return Reports{}, err
	}
	return Reports{
		Overview:     report.NewOverview(snap.Students, snap.Classes, snap.Grades, snap.Attendance),
		Distribution: report.Distribution(snap.Grades),
		Classes:      report.ClassPerformances(snap.Classes, snap.Grades),
		Students:     report.StudentSummaries(snap.Roster, snap.Attendance),
		Trend:        report.MonthlyTrend(snap.Attendance, s.now(), months),
	}, nil
}
