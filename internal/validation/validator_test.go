package validation

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title    string `json:"title" validate:"max=10"`
	Body     string `json:"body_text" validate:"required"`
	Lucidity *int   `json:"lucidity_level,omitempty" validate:"omitempty,gte=1,lte=5"`
	Style    string `json:"art_style" validate:"omitempty,oneof=realistic abstract"`
}

func intPtr(v int) *int { return &v }

func TestValidator_Success(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(sample{Body: "flying", Lucidity: intPtr(3)}))
}

func TestValidator_Errors(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		in    sample
		field string
		msg   string
	}{
		{name: "required", in: sample{}, field: "body_text", msg: "is required"},
		{name: "too long", in: sample{Body: "x", Title: "a very long title"}, field: "title", msg: "must not exceed 10 characters"},
		{name: "lucidity above range", in: sample{Body: "x", Lucidity: intPtr(6)}, field: "lucidity_level", msg: "must be less than or equal to 5"},
		{name: "lucidity below range", in: sample{Body: "x", Lucidity: intPtr(0)}, field: "lucidity_level", msg: "must be greater than or equal to 1"},
		{name: "oneof", in: sample{Body: "x", Style: "cubist"}, field: "art_style", msg: "must be one of: realistic abstract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
