package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridstock/infrastructure/apperr"
)

type sampleItem struct {
	Number   string `json:"number" validate:"notblank"`
	Quantity int64  `json:"quantity" validate:"gte=0"`
}

type sampleRequest struct {
	Items    []sampleItem `json:"products" validate:"required,min=1,dive"`
	Location string       `json:"new_location" validate:"omitempty,cellref"`
}

func TestStructAcceptsValidInput(t *testing.T) {
	err := Struct(sampleRequest{Items: []sampleItem{{Number: "BAG-001", Quantity: 0}}, Location: "r15c4"})
	assert.NoError(t, err)
}

func TestStructReportsFirstFailureAsValidationError(t *testing.T) {
	err := Struct(sampleRequest{Items: []sampleItem{{Number: "BAG-001", Quantity: -1}}})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.Contains(t, verr.Message, "greater than or equal to 0")
}

func TestStructRejectsMalformedCellRef(t *testing.T) {
	err := Struct(sampleRequest{Items: []sampleItem{{Number: "A", Quantity: 1}}, Location: "row 3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R<row>C<column>")
}

func TestStructRejectsEmptyBatch(t *testing.T) {
	err := Struct(sampleRequest{})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
