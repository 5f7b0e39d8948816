package lemmatizer

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady is returned when the model has not finished loading.
	ErrNotReady = errors.New("model not loaded")

	// ErrModelNotFound is returned when a model package is not installed.
	ErrModelNotFound = errors.New("model not found")

	// ErrModelCorrupt is returned when a model package cannot be parsed.
	ErrModelCorrupt = errors.New("model package corrupt")

	// ErrFetch is returned when downloading a model package fails.
	ErrFetch = errors.New("model fetch failed")
)

// FieldError reports a validation failure on a named request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return "'" + e.Field + "' " + e.Reason
}

// Is makes every FieldError match ErrInvalidInput.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsClientError reports whether err was caused by the caller.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
