package handler

import (
	"errors"
	"net/http"

	"backend/internal/model"
	"backend/pkg/apperr"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// httpStatus maps service-layer errors to HTTP status codes. Anything
// outside the known taxonomy is a 500.
func httpStatus(err error) int {
	var transitionErr *model.StatusTransitionError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidState):
		return http.StatusConflict
	case errors.As(err, &transitionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error envelope for a service error
func respondError(c *gin.Context, err error) {
	status := httpStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}
