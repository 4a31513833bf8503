package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"schooldash/internal/audit"
	"schooldash/internal/school"
	"schooldash/internal/store"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Deps are the collaborators of the router.
type Deps struct {
	Service *school.Service
	// Audits, if set, serves the latest persisted orphan report.
	Audits audit.Sink
	// Health checks are reported by /healthz; any failure turns it 503.
	Health  map[string]HealthCheck
	Metrics http.Handler
	// Middleware runs before every route.
	Middleware []gin.HandlerFunc
}

// NewRouter builds the JSON API.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(d.Middleware...)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	r.GET("/healthz", health(d.Health))

	h := &handlers{svc: d.Service, audits: d.Audits}
	v1 := r.Group("/v1")

	st := d.Service.Stores
	registerCRUD(v1.Group("/students"), store.StudentKind, st.Students)
	registerCRUD(v1.Group("/classes"), store.ClassKind, st.Classes)
	registerCRUD(v1.Group("/grades"), store.GradeKind, st.Grades)
	registerCRUD(v1.Group("/attendance"), store.AttendanceKind, st.Attendance, attendanceQuery)

	v1.GET("/dashboard", h.dashboard)
	v1.GET("/students/view", h.students)
	v1.GET("/grades/view", h.grades)
	v1.GET("/classes/view", h.classes)
	v1.GET("/attendance/week", h.attendanceWeek)
	v1.POST("/attendance/mark", h.markAttendance)
	v1.GET("/reports", h.reports)
	v1.GET("/audit/orphans", h.orphans)
	v1.GET("/audit/latest", h.latestAudit)
	v1.GET("/catalog/subjects", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": school.Subjects})
	})
	v1.GET("/catalog/grade-levels", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": school.GradeLevels})
	})
	v1.GET("/catalog/statuses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"student": school.StudentStatuses, "attendance": school.AttendanceStatuses})
	})
	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			ok := check(c.Request.Context())
			body[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		c.JSON(status, body)
	}
}
