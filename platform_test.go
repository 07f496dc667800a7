package deviceid

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/stretchr/testify/require"
)

func TestReadPlatform(t *testing.T) {
	orig := hostInfo
	t.Cleanup(func() { hostInfo = orig })

	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			OS:                   "linux",
			Platform:             "ubuntu",
			PlatformFamily:       "debian",
			PlatformVersion:      "24.04",
			KernelArch:           "x86_64",
			VirtualizationSystem: "kvm",
			VirtualizationRole:   "guest",
		}, nil
	}

	got := readPlatform(context.Background())
	require.Equal(t, PlatformInfo{
		OS:             runtime.GOOS,
		Name:           "ubuntu",
		Family:         "debian",
		Version:        "24.04",
		Arch:           "x86_64",
		Virtualization: "kvm",
	}, got)
}

func TestReadPlatformHostRole(t *testing.T) {
	orig := hostInfo
	t.Cleanup(func() { hostInfo = orig })

	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{Platform: "darwin", VirtualizationSystem: "vmware", VirtualizationRole: "host"}, nil
	}

	got := readPlatform(context.Background())
	require.Empty(t, got.Virtualization)
	require.Equal(t, "darwin", got.Name)
	require.Equal(t, unknownPlatformValue, got.Version)
}

func TestReadPlatformDegrades(t *testing.T) {
	orig := hostInfo
	t.Cleanup(func() { hostInfo = orig })

	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("host info unavailable")
	}

	got := readPlatform(context.Background())
	require.Equal(t, runtime.GOOS, got.OS)
	require.Equal(t, runtime.GOARCH, got.Arch)
	require.Equal(t, unknownPlatformValue, got.Name)
	require.Equal(t, unknownPlatformValue, got.Family)
}

func TestPlatformIsStable(t *testing.T) {
	first := Platform(context.Background())
	second := Platform(context.Background())

	require.Equal(t, first, second)
	require.NotEmpty(t, first.OS)
}

func TestModelName(t *testing.T) {
	require.Equal(t, "iPhone 14 Pro", ModelName("iPhone15,2"))
	require.Equal(t, "iPad (6th generation)", ModelName("iPad7,5"))
	require.Equal(t, "Pixel-7", ModelName("Pixel-7"))
	require.Equal(t, UnknownModel, ModelName(UnknownModel))
}
