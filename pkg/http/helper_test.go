package http

import (
	"net/http/httptest"
	"testing"

	apperrors "k9harmony/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		in      string
		year    int
		month   int
		wantErr bool
	}{
		{in: "2026-03", year: 2026, month: 3},
		{in: "2026-12", year: 2026, month: 12},
		{in: "2026-13", wantErr: true},
		{in: "2026-3", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			y, m, err := ParseYearMonth(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, y)
			assert.Equal(t, tt.month, m)
		})
	}
}

func TestOptionalBool(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?multi_animal=true&bad=maybe", nil)

	v, err := OptionalBool(r, "multi_animal")
	require.NoError(t, err)
	assert.True(t, v)

	v, err = OptionalBool(r, "missing")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = OptionalBool(r, "bad")
	assert.Error(t, err)
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, apperrors.SlotTaken("taken")))

	assert.Equal(t, 409, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"error":{"code":"SLOT_TAKEN","message":"taken","retryable":false,"details":{"action":"refresh_availability"}}}`,
		rec.Body.String())
}

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteSuccess(rec, map[string]string{"id": "r1"}))

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"r1"}}`, rec.Body.String())
}
