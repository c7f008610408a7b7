package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeValidation, "top_n must be positive", nil),
			want: "[VALIDATION] top_n must be positive",
		},
		{
			name: "with cause",
			err:  NewStorageError("open results.csv", fs.ErrNotExist),
			want: "[STORAGE] open results.csv: file does not exist",
		},
		{
			name: "model",
			err:  NewModelError("fit season points", errors.New("degenerate")),
			want: "[MODEL] fit season points: degenerate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("bad float")
	err := fmt.Errorf("load results: %w", NewParsingError("column grid", cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewModelError("forest", nil).
		WithContext("trees", 100).
		WithContext("rows", 0)

	assert.Equal(t, 100, err.Context["trees"])
	assert.Equal(t, 0, err.Context["rows"])

	bare := &AppError{Type: ErrTypeStorage, Message: "no context"}
	bare.WithContext("key", "value")
	assert.Equal(t, "value", bare.Context["key"])
}

func TestHelpersSetType(t *testing.T) {
	tests := []struct {
		err  *AppError
		want ErrorType
	}{
		{NewParsingError("x", nil), ErrTypeParsing},
		{NewStorageError("x", nil), ErrTypeStorage},
		{NewModelError("x", nil), ErrTypeModel},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}
