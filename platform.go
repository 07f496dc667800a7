package deviceid

import (
	"context"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/host"
)

const unknownPlatformValue = "unknown"

// PlatformInfo describes the operating system the process runs on.
type PlatformInfo struct {
	OS             string `json:"os" yaml:"os"`
	Name           string `json:"name" yaml:"name"`
	Family         string `json:"family" yaml:"family"`
	Version        string `json:"version" yaml:"version"`
	Arch           string `json:"arch" yaml:"arch"`
	Virtualization string `json:"virtualization,omitempty" yaml:"virtualization,omitempty"`
}

var (
	platformOnce sync.Once
	platformInfo PlatformInfo
	hostInfo     = host.InfoWithContext
)

// Platform returns the operating system description. It is read once per
// process; later calls return the same value.
func Platform(ctx context.Context) PlatformInfo {
	platformOnce.Do(func() {
		platformInfo = readPlatform(ctx)
	})

	return platformInfo
}

func readPlatform(ctx context.Context) PlatformInfo {
	info := PlatformInfo{
		OS:      runtime.GOOS,
		Name:    unknownPlatformValue,
		Family:  unknownPlatformValue,
		Version: unknownPlatformValue,
		Arch:    runtime.GOARCH,
	}

	stat, err := hostInfo(ctx)
	if err != nil || stat == nil {
		return info
	}

	if stat.Platform != "" {
		info.Name = stat.Platform
	}
	if stat.PlatformFamily != "" {
		info.Family = stat.PlatformFamily
	}
	if stat.PlatformVersion != "" {
		info.Version = stat.PlatformVersion
	}
	if stat.KernelArch != "" {
		info.Arch = stat.KernelArch
	}
	if stat.VirtualizationRole == "guest" {
		info.Virtualization = stat.VirtualizationSystem
	}

	return info
}

// appleModelNames maps Apple hardware identifiers to marketing names.
var appleModelNames = map[string]string{
	"iPhone8,1":  "iPhone 6s",
	"iPhone8,2":  "iPhone 6s Plus",
	"iPhone9,1":  "iPhone 7",
	"iPhone9,2":  "iPhone 7 Plus",
	"iPhone10,1": "iPhone 8",
	"iPhone10,2": "iPhone 8 Plus",
	"iPhone10,3": "iPhone X",
	"iPhone11,2": "iPhone XS",
	"iPhone11,4": "iPhone XS Max",
	"iPhone11,6": "iPhone XS Max",
	"iPhone12,1": "iPhone 11",
	"iPhone12,3": "iPhone 11 Pro",
	"iPhone12,5": "iPhone 11 Pro Max",
	"iPhone13,1": "iPhone 12 mini",
	"iPhone13,2": "iPhone 12",
	"iPhone13,3": "iPhone 12 Pro",
	"iPhone13,4": "iPhone 12 Pro Max",
	"iPhone14,2": "iPhone 13 Pro",
	"iPhone14,3": "iPhone 13 Pro Max",
	"iPhone14,4": "iPhone 13 mini",
	"iPhone14,5": "iPhone 13",
	"iPhone14,6": "iPhone SE (3rd gen)",
	"iPhone14,7": "iPhone 14",
	"iPhone14,8": "iPhone 14 Plus",
	"iPhone15,2": "iPhone 14 Pro",
	"iPhone15,3": "iPhone 14 Pro Max",
	"iPhone15,4": "iPhone 15",
	"iPhone15,5": "iPhone 15 Plus",
	"iPhone16,1": "iPhone 15 Pro",
	"iPhone16,2": "iPhone 15 Pro Max",
	"iPad6,11":   "iPad (5th generation)",
	"iPad7,5":    "iPad (6th generation)",
}

// ModelName returns the marketing name for a hardware identifier such as
// "iPhone15,2", or the identifier itself when it is not known.
func ModelName(identifier string) string {
	if name, ok := appleModelNames[identifier]; ok {
		return name
	}

	return identifier
}
