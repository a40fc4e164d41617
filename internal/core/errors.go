package core

import "errors"

// Predefined errors returned by sqlstr statement assembly and compilation.
// All failures surface synchronously at the call that triggers them; nothing
// is retried internally. Callers match with errors.Is.
var (
	// ErrNoOpenClause is returned when a token is appended before any clause
	// initializer was issued. The token is dropped and the error sticks to
	// the builder: Err reports it and Compile fails with it.
	ErrNoOpenClause = errors.New("no clause open for append")
	// ErrReferenceNotFound is returned when SetParam addresses a reference
	// never declared through Param or NamedParam.
	ErrReferenceNotFound = errors.New("parameter reference not found")
	// ErrPositionOutOfBounds is returned when compilation encounters more
	// placeholder tokens than declared parameter slots.
	ErrPositionOutOfBounds = errors.New("parameter position out of bounds")
	// ErrMissingValue is returned when compilation reaches a placeholder
	// slot with no injected value.
	ErrMissingValue = errors.New("missing injection value")
	// ErrTooManyValues is returned when SetParams is handed more values than
	// there are parameter slots.
	ErrTooManyValues = errors.New("more values than parameter slots")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
