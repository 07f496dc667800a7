package deviceid

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Sentinel values returned when a sensor cannot report a real value.
const (
	// UnknownModel is returned by [Collector.DeviceModel] when no model
	// identifier could be read.
	UnknownModel = "unknown"

	// UnknownSize is returned by [Collector.TotalMemorySize] and
	// [Collector.TotalDiskSpace] when the size could not be read.
	UnknownSize int64 = 0
)

// Component names used as keys in DiagnosticInfo.
const (
	ComponentModel  = "model"
	ComponentMemory = "memory"
	ComponentDisk   = "disk"
	ComponentHostID = "host-id"
	ComponentMAC    = "mac"
)

const biosFirmwareMessage = "To be filled by O.E.M."

// modelPlaceholders are vendor defaults that firmware reports when the model
// field was never filled in.
var modelPlaceholders = []string{
	biosFirmwareMessage,
	"System Product Name",
	"Default string",
	"Not Specified",
}

// Attributes is one snapshot of the host attributes the device hash is
// derived from. It is a plain value and is never retained by this package.
type Attributes struct {
	Model            string `json:"model" yaml:"model"`
	TotalMemoryBytes int64  `json:"total_memory_bytes" yaml:"total_memory_bytes"`
	TotalDiskBytes   int64  `json:"total_disk_bytes" yaml:"total_disk_bytes"`
}

// Degraded returns the names of the components that hold a sentinel value.
func (a Attributes) Degraded() []string {
	var components []string
	if a.Model == UnknownModel || a.Model == "" {
		components = append(components, ComponentModel)
	}
	if a.TotalMemoryBytes == UnknownSize {
		components = append(components, ComponentMemory)
	}
	if a.TotalDiskBytes == UnknownSize {
		components = append(components, ComponentDisk)
	}

	return components
}

// Collector reads device attributes from the host. It keeps no state
// between calls; every accessor performs a fresh read and is safe for
// concurrent use.
type Collector struct {
	executor CommandExecutor
	logger   zerolog.Logger
	diskPath string
	// sysRoot prefixes the pseudo-filesystem paths read on Linux.
	sysRoot string

	virtualMemory func(context.Context) (*mem.VirtualMemoryStat, error)
	diskUsage     func(context.Context, string) (*disk.UsageStat, error)
}

// NewCollector creates a Collector backed by the real host sensors.
func NewCollector() *Collector {
	return &Collector{
		executor:      &defaultCommandExecutor{Timeout: defaultTimeout},
		logger:        zerolog.Nop(),
		diskPath:      systemVolume(),
		sysRoot:       "/",
		virtualMemory: mem.VirtualMemoryWithContext,
		diskUsage:     disk.UsageWithContext,
	}
}

// WithExecutor sets a custom [CommandExecutor], enabling deterministic
// testing without real system commands.
func (c *Collector) WithExecutor(executor CommandExecutor) *Collector {
	c.executor = executor

	return c
}

// WithLogger sets the logger used to report degraded sensors.
// The default logger discards everything.
func (c *Collector) WithLogger(logger zerolog.Logger) *Collector {
	c.logger = logger

	return c
}

// WithDiskPath sets the mount point or drive whose total capacity
// [Collector.TotalDiskSpace] reports.
func (c *Collector) WithDiskPath(path string) *Collector {
	if path != "" {
		c.diskPath = path
	}

	return c
}

// DeviceModel returns the vendor model identifier of the host, or
// [UnknownModel] when it cannot be determined.
func (c *Collector) DeviceModel(ctx context.Context) string {
	model, err := c.deviceModel(ctx)
	if err != nil {
		c.degraded(ComponentModel, err)

		return UnknownModel
	}

	return model
}

// TotalMemorySize returns the installed physical memory in bytes, or
// [UnknownSize] when it cannot be determined.
func (c *Collector) TotalMemorySize(ctx context.Context) int64 {
	size, err := c.totalMemorySize(ctx)
	if err != nil {
		c.degraded(ComponentMemory, err)

		return UnknownSize
	}

	return size
}

// TotalDiskSpace returns the total capacity in bytes of the system volume,
// or [UnknownSize] when it cannot be determined.
func (c *Collector) TotalDiskSpace(ctx context.Context) int64 {
	size, err := c.totalDiskSpace(ctx)
	if err != nil {
		c.degraded(ComponentDisk, err)

		return UnknownSize
	}

	return size
}

// Collect reads all three attributes.
func (c *Collector) Collect(ctx context.Context) Attributes {
	attrs, _ := c.CollectWithErrors(ctx)

	return attrs
}

// CollectWithErrors reads all three attributes and returns, keyed by
// component name, the errors of the sensors that fell back to a sentinel.
func (c *Collector) CollectWithErrors(ctx context.Context) (Attributes, map[string]error) {
	attrs := Attributes{Model: UnknownModel, TotalMemoryBytes: UnknownSize, TotalDiskBytes: UnknownSize}
	errs := make(map[string]error)

	if model, err := c.deviceModel(ctx); err != nil {
		c.degraded(ComponentModel, err)
		errs[ComponentModel] = err
	} else {
		attrs.Model = model
	}

	if size, err := c.totalMemorySize(ctx); err != nil {
		c.degraded(ComponentMemory, err)
		errs[ComponentMemory] = err
	} else {
		attrs.TotalMemoryBytes = size
	}

	if size, err := c.totalDiskSpace(ctx); err != nil {
		c.degraded(ComponentDisk, err)
		errs[ComponentDisk] = err
	} else {
		attrs.TotalDiskBytes = size
	}

	return attrs, errs
}

func (c *Collector) deviceModel(ctx context.Context) (string, error) {
	model, err := c.readModel(ctx)
	if err != nil {
		return "", err
	}

	return validateModel(model)
}

func (c *Collector) totalMemorySize(ctx context.Context) (int64, error) {
	vm, err := c.virtualMemory(ctx)
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}

	return toInt64(vm.Total)
}

func (c *Collector) totalDiskSpace(ctx context.Context) (int64, error) {
	usage, err := c.diskUsage(ctx, c.diskPath)
	if err != nil {
		return 0, fmt.Errorf("read disk usage of %s: %w", c.diskPath, err)
	}

	return toInt64(usage.Total)
}

func (c *Collector) degraded(component string, err error) {
	c.logger.Warn().
		Err(&ComponentError{Component: component, Err: err}).
		Str("component", component).
		Msg("sensor unavailable, using sentinel")
}

// validateModel trims the raw model string and rejects empty values and
// firmware placeholders.
func validateModel(raw string) (string, error) {
	model := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if model == "" {
		return "", ErrNotFound
	}

	for _, placeholder := range modelPlaceholders {
		if strings.EqualFold(model, placeholder) {
			return "", ErrOEMPlaceholder
		}
	}

	return model, nil
}

// toInt64 converts a sensor reading, rejecting values above math.MaxInt64.
func toInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, ErrValueOverflow
	}

	return int64(v), nil
}

// systemVolume returns the path of the volume the operating system runs from.
func systemVolume() string {
	if runtime.GOOS != "windows" {
		return "/"
	}

	drive := os.Getenv("SystemDrive")
	if drive == "" {
		drive = "C:"
	}

	return drive + `\`
}

var defaultCollector = sync.OnceValue(NewCollector)

// DeviceModel reads the model identifier with a default [Collector].
func DeviceModel(ctx context.Context) string {
	return defaultCollector().DeviceModel(ctx)
}

// TotalMemorySize reads the physical memory size with a default [Collector].
func TotalMemorySize(ctx context.Context) int64 {
	return defaultCollector().TotalMemorySize(ctx)
}

// TotalDiskSpace reads the system volume capacity with a default [Collector].
func TotalDiskSpace(ctx context.Context) int64 {
	return defaultCollector().TotalDiskSpace(ctx)
}
