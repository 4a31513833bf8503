package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schooldash/internal/store"
)

type batchRequest[T any] struct {
	Items []T `json:"items" binding:"required"`
}

// listFilter narrows a listing by the request's query string.
type listFilter[T any] func(c *gin.Context, items []T) ([]T, error)

// registerCRUD mounts the record endpoints of one entity under g. Listings
// pass through narrow in order.
func registerCRUD[T any](g *gin.RouterGroup, kind store.Kind[T], s store.EntityStore[T], narrow ...listFilter[T]) {
	g.GET("", func(c *gin.Context) {
		items, err := s.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		for _, f := range narrow {
			if items, err = f(c, items); err != nil {
				writeError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	})

	g.GET("/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			writeError(c, err)
			return
		}
		item, err := s.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.POST("", func(c *gin.Context) {
		var draft T
		if err := c.ShouldBindJSON(&draft); err != nil {
			writeError(c, invalid(err))
			return
		}
		item, err := s.Create(c.Request.Context(), draft)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	g.PUT("/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			writeError(c, err)
			return
		}
		var draft T
		if err := c.ShouldBindJSON(&draft); err != nil {
			writeError(c, invalid(err))
			return
		}
		item, err := s.Update(c.Request.Context(), id, draft)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			writeError(c, err)
			return
		}
		ok, err := s.Delete(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": ok, "id": id, "entity": kind.Name})
	})

	g.POST("/batch", batchHandler(s.CreateBatch))
	g.PUT("/batch", batchHandler(s.UpdateBatch))
}

func batchHandler[T any](run func(ctx context.Context, items []T) (store.BatchResult[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchRequest[T]
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, invalid(err))
			return
		}
		res, err := run(c.Request.Context(), req.Items)
		var perr *store.PartialBatchError
		switch {
		case errors.As(err, &perr):
			c.JSON(http.StatusMultiStatus, res)
		case err != nil:
			writeError(c, err)
		default:
			c.JSON(http.StatusOK, res)
		}
	}
}

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, invalid(errors.New("id must be a positive integer"))
	}
	return id, nil
}
