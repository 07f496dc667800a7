//go:build linux

package deviceid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Model sources in lookup order. DMI covers PCs and servers, the device
// tree covers ARM boards such as the Raspberry Pi.
var linuxModelLocations = []string{
	"sys/class/dmi/id/product_name",
	"sys/devices/virtual/dmi/id/product_name",
	"proc/device-tree/model",
}

// readModel retrieves the product name from DMI or the device tree.
func (c *Collector) readModel(_ context.Context) (string, error) {
	var lastErr error = ErrNotFound

	for _, location := range linuxModelLocations {
		path := filepath.Join(c.sysRoot, location)

		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Debug().Err(err).Str("path", path).Msg("model source unavailable")

			continue
		}

		model, err := validateModel(string(data))
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", path, err)

			continue
		}

		return strings.TrimSpace(model), nil
	}

	return "", fmt.Errorf("%w: %w", ErrAllMethodsFailed, lastErr)
}
