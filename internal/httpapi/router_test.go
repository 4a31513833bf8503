package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"schooldash/internal/audit"
	"schooldash/internal/model"
	"schooldash/internal/school"
	"schooldash/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T) (*gin.Engine, *school.Service) {
	t.Helper()
	stores := store.Stores{
		Students:   store.NewMemory(store.StudentKind),
		Classes:    store.NewMemory(store.ClassKind),
		Grades:     store.NewMemory(store.GradeKind),
		Attendance: store.NewMemory(store.AttendanceKind),
	}
	_, err := store.Seed(context.Background(), stores)
	require.NoError(t, err)
	svc := school.New(stores, nil)
	return NewRouter(Deps{Service: svc}), svc
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStudentCRUD(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/v1/students", map[string]any{
		"first_name": "Zoe", "last_name": "Park", "email": "zoe@school.edu", "class_ids": []int{2},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Student](t, w)
	require.Equal(t, 7, created.ID)
	require.Equal(t, model.StatusActive, created.Status)

	w = do(t, r, http.MethodGet, "/v1/students/7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	created.Phone = "555-9999"
	w = do(t, r, http.MethodPut, "/v1/students/7", created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "555-9999", decode[model.Student](t, w).Phone)

	w = do(t, r, http.MethodDelete, "/v1/students/7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/students/7", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "student 7 not found")
}

func TestCreateWithoutEmailIs422(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodPost, "/v1/students", map[string]any{"first_name": "No", "last_name": "Mail"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w)
	require.Equal(t, "is required", body.Fields["email"])

	list := decode[struct {
		Items []model.Student `json:"items"`
	}](t, do(t, r, http.MethodGet, "/v1/students", nil))
	require.Len(t, list.Items, 6)
}

func TestBadInput(t *testing.T) {
	r, _ := newTestServer(t)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/v1/grades/abc", nil).Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/v1/students/view?sort=shoe", nil).Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/v1/attendance/week", nil).Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/v1/attendance/mark", map[string]any{"student_id": 1}).Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/classes", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchPartialIs207(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodPost, "/v1/grades/batch", map[string]any{"items": []map[string]any{
		{"student_id": 1, "class_id": 1, "assignment_name": "Pop quiz", "points": 8, "max_points": 10},
		{"student_id": 1, "class_id": 1, "assignment_name": "Broken", "points": 8, "max_points": 0},
	}})
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())
	res := decode[store.BatchResult[model.Grade]](t, w)
	require.Len(t, res.Succeeded, 1)
	require.Len(t, res.Failed, 1)
	require.Equal(t, 1, res.Failed[0].Index)

	w = do(t, r, http.MethodPost, "/v1/grades/batch", map[string]any{"items": []map[string]any{
		{"student_id": 2, "class_id": 2, "points": 5, "max_points": 10},
	}})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestViews(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/v1/students/view?subject=Science&sort=first_name&desc=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	students := decode[school.StudentList](t, w)
	require.Len(t, students.Rows, 3)
	require.Equal(t, "Priya Patel", students.Rows[0].FullName)
	require.True(t, students.Sort.Desc)

	w = do(t, r, http.MethodGet, "/v1/grades/view?class_id=1&category=quiz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	book := decode[school.GradeBook](t, w)
	require.Equal(t, 3, book.Count)
	require.Equal(t, 86, book.ClassAverage)
	require.Equal(t, 1, book.HighAchievers)

	w = do(t, r, http.MethodGet, "/v1/attendance/week?class_id=1&date=2024-10-09", nil)
	require.Equal(t, http.StatusOK, w.Code)
	wk := decode[school.AttendanceWeek](t, w)
	require.Equal(t, 78, wk.Stats.Rate)
	require.Len(t, wk.Week.Days, 7)

	require.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/v1/attendance/week?class_id=99", nil).Code)

	for _, path := range []string{"/v1/dashboard", "/v1/classes/view", "/v1/reports?months=6", "/v1/catalog/subjects", "/v1/catalog/grade-levels", "/v1/catalog/statuses"} {
		require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, path, nil).Code, path)
	}
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/v1/reports?months=0", nil).Code)
}

func TestAttendanceListFilters(t *testing.T) {
	r, _ := newTestServer(t)
	ids := func(path string) []int {
		t.Helper()
		w := do(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		out := []int{}
		for _, rec := range decode[struct {
			Items []model.AttendanceRecord `json:"items"`
		}](t, w).Items {
			out = append(out, rec.ID)
		}
		return out
	}

	require.Len(t, ids("/v1/attendance"), 13)
	require.Equal(t, []int{4, 5, 6}, ids("/v1/attendance?class_id=1&date=2024-10-09"))
	require.Equal(t, []int{5, 11}, ids("/v1/attendance?status=absent"))
	require.Equal(t, []int{10, 12}, ids("/v1/attendance?student_id=2"))
	require.Equal(t, []int{4, 5, 6, 10, 11, 12, 13}, ids("/v1/attendance?from=2024-10-08&to=2024-10-10"))

	for _, path := range []string{"/v1/attendance?date=yesterday", "/v1/attendance?status=asleep", "/v1/attendance?class_id=x"} {
		require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, path, nil).Code, path)
	}
}

func TestMarkAttendance(t *testing.T) {
	r, _ := newTestServer(t)
	body := map[string]any{"student_id": 5, "class_id": 4, "date": "2024-10-09", "status": "late"}
	w := do(t, r, http.MethodPost, "/v1/attendance/mark", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body["status"] = "present"
	w = do(t, r, http.MethodPost, "/v1/attendance/mark", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, model.Present, decode[model.AttendanceRecord](t, w).Status)
}

func TestOrphansAfterDelete(t *testing.T) {
	r, _ := newTestServer(t)
	rep := decode[audit.Report](t, do(t, r, http.MethodGet, "/v1/audit/orphans", nil))
	require.Empty(t, rep.Findings)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/v1/classes/5", nil).Code)
	rep = decode[audit.Report](t, do(t, r, http.MethodGet, "/v1/audit/orphans", nil))
	require.NotEmpty(t, rep.Findings)

	require.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/v1/audit/latest", nil).Code)
}

type downStore[T any] struct{ store.EntityStore[T] }

func (downStore[T]) List(context.Context) ([]T, error) {
	return nil, &store.TransportError{Op: "GET", URL: "http://backend", Err: errors.New("connection refused")}
}

func TestTransportFailureIs502(t *testing.T) {
	r, svc := newTestServer(t)
	svc.Stores.Classes = downStore[model.ClassSection]{svc.Stores.Classes}
	require.Equal(t, http.StatusBadGateway, do(t, r, http.MethodGet, "/v1/dashboard", nil).Code)
}

func TestHealthz(t *testing.T) {
	_, svc := newTestServer(t)
	r := NewRouter(Deps{Service: svc, Health: map[string]HealthCheck{
		"redis": func(context.Context) bool { return false },
	}})
	w := do(t, r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"redis":false`)
}
