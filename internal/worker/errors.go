package worker

import "errors"

// permanentError marks a job failure that retrying cannot fix (bad payload,
// missing order). Such jobs go straight to the DLQ.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the pool does not retry it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func errorsIsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
