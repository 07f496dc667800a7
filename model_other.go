//go:build !linux && !darwin && !windows

package deviceid

import "context"

func (c *Collector) readModel(_ context.Context) (string, error) {
	return "", ErrNotFound
}
