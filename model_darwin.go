//go:build darwin

package deviceid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// spHardwareDataType represents the JSON output of `system_profiler SPHardwareDataType -json`.
type spHardwareDataType struct {
	SPHardwareDataType []spHardwareEntry `json:"SPHardwareDataType"`
}

type spHardwareEntry struct {
	ModelName    string `json:"machine_name"`
	MachineModel string `json:"machine_model"`
}

// readModel retrieves the hardware model identifier (e.g. "MacBookPro18,3").
// sysctl is the primary source; system_profiler is the fallback.
func (c *Collector) readModel(ctx context.Context) (string, error) {
	output, err := executeCommand(ctx, c.executor, c.logger, "sysctl", "-n", "hw.model")
	if err == nil {
		model, vErr := validateModel(output)
		if vErr == nil {
			return model, nil
		}
		err = vErr
	}

	profilerOutput, profilerErr := executeCommand(ctx, c.executor, c.logger, "system_profiler", "SPHardwareDataType", "-json")
	if profilerErr != nil {
		return "", fmt.Errorf("%w: sysctl: %w, system_profiler: %w", ErrAllMethodsFailed, err, profilerErr)
	}

	return parseHardwareModel(profilerOutput)
}

// parseHardwareModel extracts the machine model from system_profiler JSON.
func parseHardwareModel(jsonOutput string) (string, error) {
	var hw spHardwareDataType
	if err := json.Unmarshal([]byte(jsonOutput), &hw); err != nil {
		return "", &ParseError{Source: "system_profiler JSON", Err: err}
	}

	if len(hw.SPHardwareDataType) == 0 {
		return "", &ParseError{Source: "system_profiler JSON", Err: errors.New("no hardware entries")}
	}

	entry := hw.SPHardwareDataType[0]
	if entry.MachineModel != "" {
		return entry.MachineModel, nil
	}

	if entry.ModelName != "" {
		return entry.ModelName, nil
	}

	return "", ErrNotFound
}
