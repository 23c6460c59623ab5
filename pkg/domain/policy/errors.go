package policy

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch    = errors.New("policy value has the wrong type")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownProfile  = errors.New("unknown profile")
)

// TypeMismatchError identifies the first policy whose value does not match
// the declared schema type.
type TypeMismatchError struct {
	Key      string
	Expected Kind
	Actual   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("policy %q should be %s, got %s", e.Key, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
