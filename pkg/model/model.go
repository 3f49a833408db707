package model

import "errors"

// ValidationError marks a value handed to the model that breaks one of its
// preconditions, e.g. a profile group whose active index is out of range.
type ValidationError struct{ Err error }

func (e ValidationError) Error() string { return e.Err.Error() }

func (e ValidationError) Unwrap() error { return e.Err }

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var v ValidationError
	return errors.As(err, &v)
}
