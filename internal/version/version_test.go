package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string, info *debug.BuildInfo) {
	t.Helper()

	origVersion, origRead := Version, readBuildInfo
	t.Cleanup(func() { Version, readBuildInfo = origVersion, origRead })

	Version = v
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return info, info != nil
	}
}

func TestShortRelease(t *testing.T) {
	withVersion(t, "1.2.3", nil)

	require.Equal(t, "deviceid version: 1.2.3", Short("deviceid"))
}

func TestShortDevelopmentUsesBuildInfo(t *testing.T) {
	withVersion(t, devVersion, &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}})

	require.Equal(t, "deviceid version: v0.4.0", Short("deviceid"))
}

func TestShortDevelopmentWithoutBuildInfo(t *testing.T) {
	withVersion(t, devVersion, nil)

	require.Equal(t, "deviceid version: 0.0.0", Short("deviceid"))
}

func TestLongRelease(t *testing.T) {
	withVersion(t, "1.2.3", nil)

	long := Long("deviceid")
	require.Contains(t, long, "deviceid version: 1.2.3, ")
	require.Contains(t, long, "Build date: ")
	require.Contains(t, long, "Go version: "+GoVersion)
}

func TestLongDevelopmentUsesBuildInfo(t *testing.T) {
	withVersion(t, devVersion, &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Version: "(devel)", Sum: "h1:abc"},
	})

	require.Equal(t, "deviceid version: (devel), Git commit: h1:abc, Go version: go1.25.0", Long("deviceid"))
}
