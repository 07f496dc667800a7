package deviceid

import (
	"errors"
	"fmt"
)

// Sentinel errors recorded in [DiagnosticInfo.Errors] and in log output.
// None of them is returned by the accessors themselves: every accessor
// degrades to its sentinel value instead.
var (
	// ErrSensorUnavailable is recorded when a host sensor could not report
	// a value and the accessor fell back to its sentinel.
	ErrSensorUnavailable = errors.New("sensor unavailable")

	// ErrProviderUnavailable is recorded when the external identifier
	// provider is missing, failed, or did not answer in time.
	ErrProviderUnavailable = errors.New("external identifier provider unavailable")

	// ErrInvalidToken is recorded when the provider answered with an empty
	// or placeholder token.
	ErrInvalidToken = errors.New("invalid external identifier token")

	// ErrNotAuthorized can be returned by providers when the user or the
	// platform denied access to the identifier.
	ErrNotAuthorized = errors.New("external identifier access not authorized")

	// ErrNotFound is returned when a hardware value is not found in
	// command output or system files.
	ErrNotFound = errors.New("value not found")

	// ErrOEMPlaceholder is returned when a hardware value matches a
	// BIOS/UEFI OEM placeholder such as "To be filled by O.E.M.".
	ErrOEMPlaceholder = errors.New("value is OEM placeholder")

	// ErrValueOverflow is returned when a sensor reports a size that does
	// not fit in an int64.
	ErrValueOverflow = errors.New("value does not fit in int64")

	// ErrAllMethodsFailed is returned when all collection methods for a
	// hardware component have been exhausted without success.
	ErrAllMethodsFailed = errors.New("all collection methods failed")
)

// CommandError records a failed system command execution.
// Use [errors.As] to extract the command name from wrapped errors.
type CommandError struct {
	Command string // command name, e.g. "sysctl", "wmic", "powershell"
	Err     error  // underlying error from exec
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError records a failure while parsing command or system output.
type ParseError struct {
	Source string // data source, e.g. "system_profiler JSON", "wmic output"
	Err    error  // underlying parse error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ComponentError records a failure while reading a specific attribute or
// signal. These errors appear in [DiagnosticInfo.Errors].
type ComponentError struct {
	Component string // component name, e.g. "model", "memory", "host-id"
	Err       error  // underlying error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %q: %v", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}
