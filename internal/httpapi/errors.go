package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"schooldash/internal/httpmiddleware"
	"schooldash/internal/report"
	"schooldash/internal/store"
)

// badRequest marks errors caused by malformed input.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func invalid(err error) error { return badRequest{err: err} }

// Status maps an error to its HTTP status.
func Status(err error) int {
	var (
		verr *store.ValidationError
		berr *store.PartialBatchError
		bad  badRequest
	)
	switch {
	case errors.As(err, &bad), errors.Is(err, report.ErrUnknownField):
		return http.StatusBadRequest
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &berr):
		return http.StatusMultiStatus
	case errors.Is(err, store.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := Status(err)
	body := gin.H{"error": err.Error()}
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		log.Printf("request %s %s failed: %v", httpmiddleware.GetRequestID(c), c.FullPath(), err)
		if status == http.StatusInternalServerError {
			body["error"] = "internal error"
		}
	}
	c.JSON(status, body)
}
