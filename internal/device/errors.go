package device

import "errors"

var (
	// ErrVariableNotFound is returned when a variable name was never
	// registered on the device.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrTypeMismatch is returned when a variable holds a different type
	// than the one requested.
	ErrTypeMismatch = errors.New("variable type mismatch")
)
