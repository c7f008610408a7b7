package analytics

import (
	"context"
	"errors"

	apperrors "f1insights/internal/errors"
)

var (
	// ErrUnknownDriver is returned when a selected driver id is not loaded
	ErrUnknownDriver = errors.New("unknown driver")
	// ErrUnknownConstructor is returned when a selected constructor id is not loaded
	ErrUnknownConstructor = errors.New("unknown constructor")
)

// modelError classifies a fitting failure. Cancellation passes through
// untouched so callers can still tell a timeout from a bad model.
func modelError(step string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.NewModelError(step, err)
}
