package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/themeboard/internal/api/middleware"
	"github.com/timmy/themeboard/internal/domain"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyCorpus), errors.Is(err, domain.ErrEmptyComment):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrClustering):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLabeling):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": "<prefix>: <err>"} with the mapped status.
func respondError(c *gin.Context, prefix string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).Error(prefix)
	}
	c.JSON(status, gin.H{
		"error": prefix + ": " + err.Error(),
	})
}

// commentID parses the :id path parameter, writing a 400 when it is invalid.
func commentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid comment id: " + c.Param("id"),
		})
		return 0, false
	}
	return id, true
}
