package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"schooldash/internal/report"
	"schooldash/internal/store"
)

func TestStatus(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          invalid(errors.New("bad id")),
		http.StatusUnprocessableEntity: &store.ValidationError{Entity: "student", Fields: map[string]string{"email": "is required"}},
		http.StatusNotFound:            fmt.Errorf("load: %w", &store.NotFoundError{Entity: "class", ID: 9}),
		http.StatusMultiStatus:         &store.PartialBatchError{Entity: "grade", Succeeded: 1},
		http.StatusBadGateway:          &store.TransportError{Op: "GET", URL: "http://backend", Err: errors.New("refused")},
		http.StatusInternalServerError: errors.New("boom"),
	}
	for want, err := range cases {
		require.Equal(t, want, Status(err), err.Error())
	}
	require.Equal(t, http.StatusBadRequest, Status(fmt.Errorf("sort: %w", report.ErrUnknownField)))
}
