//go:build windows

package deviceid

import (
	"context"
	"fmt"
	"strings"
)

// readModel retrieves the computer system model using wmic, with PowerShell fallback.
func (c *Collector) readModel(ctx context.Context) (string, error) {
	output, err := executeCommand(ctx, c.executor, c.logger, "wmic", "computersystem", "get", "Model", "/value")
	if err == nil {
		value, parseErr := parseWmicValue(output, "Model=")
		if parseErr == nil {
			return value, nil
		}
		err = parseErr
	}

	psOutput, psErr := executeCommand(ctx, c.executor, c.logger, "powershell", "-Command",
		"Get-CimInstance -ClassName Win32_ComputerSystem | Select-Object -ExpandProperty Model")
	if psErr != nil {
		return "", fmt.Errorf("%w: wmic: %w, powershell: %w", ErrAllMethodsFailed, err, psErr)
	}

	value := strings.TrimSpace(psOutput)
	if value == "" {
		return "", &ParseError{Source: "powershell output", Err: ErrNotFound}
	}

	return value, nil
}

// parseWmicValue extracts the value following prefix from `wmic ... /value` output.
func parseWmicValue(output, prefix string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		if value == "" || value == biosFirmwareMessage {
			continue
		}

		return value, nil
	}

	return "", &ParseError{Source: "wmic output", Err: fmt.Errorf("prefix %s: %w", prefix, ErrNotFound)}
}
