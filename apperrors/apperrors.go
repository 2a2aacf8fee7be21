package apperrors

import "errors"

// ValidationError means a precondition failed before any write happened.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	Msg    string
}

func (e *NotFoundError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Entity + " not found"
}

// IntegrityError means an expected companion row is missing, e.g. a tuition
// payment for an enrollment that was never created.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return e.Msg }

func NewValidation(msg string) error { return &ValidationError{Msg: msg} }

func NewNotFound(entity string) error { return &NotFoundError{Entity: entity} }

func NewIntegrity(msg string) error { return &IntegrityError{Msg: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
