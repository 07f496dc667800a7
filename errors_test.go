package deviceid

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandError(t *testing.T) {
	inner := fmt.Errorf("exit status 1")
	err := &CommandError{Command: "sysctl", Err: inner}

	require.Equal(t, `command "sysctl" failed: exit status 1`, err.Error())
	require.Same(t, inner, err.Unwrap())

	var cmdErr *CommandError
	require.ErrorAs(t, fmt.Errorf("reading model: %w", err), &cmdErr)
	require.Equal(t, "sysctl", cmdErr.Command)
}

func TestParseError(t *testing.T) {
	inner := fmt.Errorf("unexpected end of JSON input")
	err := &ParseError{Source: "system_profiler JSON", Err: inner}

	require.Equal(t, "failed to parse system_profiler JSON: unexpected end of JSON input", err.Error())
	require.ErrorIs(t, fmt.Errorf("wrapped: %w", err), inner)
}

func TestComponentError(t *testing.T) {
	err := &ComponentError{Component: ComponentDisk, Err: ErrSensorUnavailable}

	require.Equal(t, `component "disk": sensor unavailable`, err.Error())
	require.ErrorIs(t, err, ErrSensorUnavailable)

	var compErr *ComponentError
	require.ErrorAs(t, fmt.Errorf("hash: %w", err), &compErr)
	require.Equal(t, ComponentDisk, compErr.Component)
}

func TestSentinelErrorsDistinct(t *testing.T) {
	all := []error{
		ErrSensorUnavailable, ErrProviderUnavailable, ErrInvalidToken, ErrNotAuthorized,
		ErrNotFound, ErrOEMPlaceholder, ErrValueOverflow, ErrAllMethodsFailed,
	}

	for i, a := range all {
		for j, b := range all {
			if i != j {
				require.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
