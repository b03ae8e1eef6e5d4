package chromakey

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the concrete error types below via errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// InvalidInputError reports a malformed image or mask: zero dimensions, a nil
// buffer, or an image and mask whose dimensions differ.
type InvalidInputError struct {
	Op     string // Stage that rejected the input (e.g. "classify")
	Reason string // Human-readable description
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("chromakey %s: invalid input: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidParameterError reports a parameter outside its documented range or a
// logically inconsistent combination (e.g. low threshold above high).
type InvalidParameterError struct {
	Op     string      // Stage that rejected the parameter
	Name   string      // Parameter name
	Value  interface{} // Offending value
	Reason string      // Human-readable description of the valid range
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("chromakey %s: invalid parameter %s=%v: %s", e.Op, e.Name, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

func inputError(op, format string, args ...interface{}) error {
	return &InvalidInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func paramError(op, name string, value interface{}, reason string) error {
	return &InvalidParameterError{Op: op, Name: name, Value: value, Reason: reason}
}
