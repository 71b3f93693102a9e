package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFollowsWrappedErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: Validation("count", "must be between %d and %d", 1, 50), want: http.StatusBadRequest},
		{name: "wrapped not found", err: fmt.Errorf("move: %w", NotFound("warehouse", "7")), want: http.StatusNotFound},
		{name: "insufficient", err: &InsufficientQuantityError{ProductNumber: "BAG-001", Available: 1, Requested: 3}, want: http.StatusConflict},
		{name: "occupied", err: &OccupiedError{Location: "R1C1"}, want: http.StatusConflict},
		{name: "other", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "count: must be between 1 and 50", Validation("count", "must be between %d and %d", 1, 50).Error())
	assert.Equal(t, "product BAG-9 not found", NotFound("product", "BAG-9").Error())
	assert.Equal(t, "warehouse not found", NotFound("warehouse", "").Error())
	assert.Equal(t, "location R2C3 is occupied by product BAG-1", (&OccupiedError{Location: "R2C3", ProductNumber: "BAG-1"}).Error())
	assert.Contains(t, (&InsufficientQuantityError{ProductNumber: "BAG-1", Available: 2, Requested: 5}).Error(), "BAG-1")
}

func TestPublicMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "failed", PublicMessage(errors.New("sql: connection reset"), "failed"))
	assert.Equal(t, "product X not found", PublicMessage(NotFound("product", "X"), "failed"))
	assert.Equal(t, "count: must be between 1 and 50", PublicMessage(fmt.Errorf("add rows: %w", Validation("count", "must be between 1 and 50")), "failed"))
}
