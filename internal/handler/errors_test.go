package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFoundf("order %s", "abc"), http.StatusNotFound},
		{"invalid argument", apperr.InvalidArgumentf("quantity must be positive"), http.StatusBadRequest},
		{"invalid state", apperr.InvalidStatef("adjustment already resolved"), http.StatusConflict},
		{
			"invalid transition",
			&model.StatusTransitionError{Current: model.StatusCancelled, Attempted: model.StatusApproved},
			http.StatusUnprocessableEntity,
		},
		{
			"wrapped sentinel",
			fmt.Errorf("loading order: %w", apperr.ErrNotFound),
			http.StatusNotFound,
		},
		{"unknown error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatus(tt.err))
		})
	}
}
