package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string  `json:"id" validate:"required"`
	Title  string  `json:"title" validate:"required,max=20"`
	Price  float64 `json:"currentPrice" validate:"gte=0"`
	Mode   string  `json:"mode" validate:"omitempty,oneof=file http"`
	Hidden string  `json:"-" validate:"omitempty,url"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(record{ID: "P1", Title: "Phone", Price: 10, Mode: "file"}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(record{Title: "Phone", Price: -1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["id"])
	assert.Equal(t, "must be greater than or equal to 0", fields["currentPrice"])
	assert.Equal(t, "field 'currentPrice' must be greater than or equal to 0; field 'id' is required", err.Error())
}

func TestValidate_FallsBackToStructFieldName(t *testing.T) {
	err := Validate(record{ID: "P1", Title: "Phone", Hidden: "not a url"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid URL", valErr.Fields()["Hidden"])
}

func TestValidate_MaxAndOneOf(t *testing.T) {
	err := Validate(record{ID: "P1", Title: "A title that is far too long", Mode: "ftp"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 20 characters", valErr.Fields()["title"])
	assert.Equal(t, "must be one of: file http", valErr.Fields()["mode"])
}
