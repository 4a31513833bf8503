package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"schooldash/internal/audit"
	"schooldash/internal/filter"
	"schooldash/internal/model"
	"schooldash/internal/report"
	"schooldash/internal/school"
)

// DayLayout is the query format of calendar days.
const DayLayout = "2006-01-02"

type handlers struct {
	svc    *school.Service
	audits audit.Sink
}

func (h *handlers) dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) students(c *gin.Context) {
	var q struct {
		filter.StudentCriteria
		report.SortState
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, invalid(err))
		return
	}
	list, err := h.svc.Students(c.Request.Context(), q.StudentCriteria, q.SortState)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) grades(c *gin.Context) {
	var q filter.GradeCriteria
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, invalid(err))
		return
	}
	book, err := h.svc.Grades(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *handlers) classes(c *gin.Context) {
	list, err := h.svc.Classes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) attendanceWeek(c *gin.Context) {
	classID, err := strconv.Atoi(c.Query("class_id"))
	if err != nil || classID <= 0 {
		writeError(c, invalid(errors.New("class_id must be a positive integer")))
		return
	}
	day, err := parseDay(c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	wk, err := h.svc.AttendanceWeek(c.Request.Context(), classID, day)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wk)
}

func (h *handlers) markAttendance(c *gin.Context) {
	var req struct {
		StudentID int                    `json:"student_id" binding:"required,gt=0"`
		ClassID   int                    `json:"class_id" binding:"required,gt=0"`
		Date      string                 `json:"date"`
		Status    model.AttendanceStatus `json:"status" binding:"required,oneof=present absent late"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, invalid(err))
		return
	}
	day, err := parseDay(req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	rec, created, err := h.svc.MarkAttendance(c.Request.Context(), req.StudentID, req.ClassID, day, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, rec)
}

func (h *handlers) reports(c *gin.Context) {
	months := 0
	if v := c.Query("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 24 {
			writeError(c, invalid(errors.New("months must be between 1 and 24")))
			return
		}
		months = parsed
	}
	r, err := h.svc.Reports(c.Request.Context(), months)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handlers) orphans(c *gin.Context) {
	rep, err := h.svc.Audit(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *handlers) latestAudit(c *gin.Context) {
	if h.audits == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit storage not configured"})
		return
	}
	r, ok, err := h.audits.Latest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audit has run yet"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// attendanceQuery narrows attendance listings by class_id, student_id,
// status, date and an inclusive from/to day range.
func attendanceQuery(c *gin.Context, records []model.AttendanceRecord) ([]model.AttendanceRecord, error) {
	var q struct {
		ClassID   int                    `form:"class_id" binding:"gte=0"`
		StudentID int                    `form:"student_id" binding:"gte=0"`
		Status    model.AttendanceStatus `form:"status" binding:"omitempty,oneof=present absent late"`
		Date      string                 `form:"date"`
		From      string                 `form:"from"`
		To        string                 `form:"to"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, invalid(err)
	}
	crit := filter.AttendanceCriteria{ClassID: q.ClassID, StudentID: q.StudentID, Status: q.Status}
	for _, d := range []struct {
		raw string
		dst *time.Time
	}{{q.Date, &crit.Day}, {q.From, &crit.From}, {q.To, &crit.To}} {
		if d.raw == "" {
			continue
		}
		t, err := parseDay(d.raw)
		if err != nil {
			return nil, err
		}
		*d.dst = t
	}
	return filter.Attendance(records, crit), nil
}

// parseDay accepts a calendar day or an RFC 3339 timestamp. Blank is today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return filter.Day(time.Now()), nil
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid(errors.New("date must be YYYY-MM-DD or RFC 3339"))
	}
	return t, nil
}
