package deviceid

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type staticSource Attributes

func (s staticSource) Collect(context.Context) Attributes {
	return Attributes(s)
}

func TestServiceWithHostID(t *testing.T) {
	svc := New(staticSource(pixel7), nil).WithHostID()
	svc.hostID = func(context.Context) (string, error) {
		return "8f1d2c3b-0000-4000-8000-5e6f7a8b9c0d\n", nil
	}

	got := svc.DeviceHash(context.Background())

	want := deriveHash(append(canonicalFields(pixel7), "8f1d2c3b-0000-4000-8000-5e6f7a8b9c0d"), "", Format64)
	require.Equal(t, want, got)
	require.Contains(t, svc.Diagnostics().Collected, ComponentHostID)
}

func TestServiceWithHostIDUnavailable(t *testing.T) {
	svc := New(staticSource(pixel7), nil).WithHostID()
	svc.hostID = func(context.Context) (string, error) {
		return "", errors.New("no machine-id")
	}

	require.Equal(t, Hash(pixel7), svc.DeviceHash(context.Background()))

	diag := svc.Diagnostics()
	require.NotContains(t, diag.Collected, ComponentHostID)

	var compErr *ComponentError
	require.ErrorAs(t, diag.Errors[ComponentHostID], &compErr)
	require.Equal(t, ComponentHostID, compErr.Component)
}

func TestServiceWithMAC(t *testing.T) {
	svc := New(staticSource(pixel7), nil).WithMAC()
	svc.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "wlan0", Flags: net.FlagUp, HardwareAddr: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02}},
			{Name: "eth0", Flags: net.FlagUp, HardwareAddr: net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01}},
			{Name: "docker0", Flags: net.FlagUp, HardwareAddr: net.HardwareAddr{0x02, 0x42, 0, 0, 0, 0x01}},
		}, nil
	}

	got := svc.DeviceHash(context.Background())

	want := deriveHash(append(canonicalFields(pixel7), "02:00:00:00:00:01,02:00:00:00:00:02"), "", Format64)
	require.Equal(t, want, got)
}

func TestServiceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := staticSource(Attributes{Model: UnknownModel, TotalMemoryBytes: 1024, TotalDiskBytes: UnknownSize})
	svc := New(src, StaticProvider("ABCD-1234-EF00")).WithMetrics(reg)

	svc.DeviceHash(context.Background())
	svc.DeviceHash(context.Background())
	svc.ExternalID(context.Background())
	svc.ExternalID(context.Background())

	require.InDelta(t, 2, testutil.ToFloat64(svc.metrics.hashDerivations), 0)
	require.InDelta(t, 2, testutil.ToFloat64(svc.metrics.sensorDegraded.WithLabelValues(ComponentModel)), 0)
	require.InDelta(t, 2, testutil.ToFloat64(svc.metrics.sensorDegraded.WithLabelValues(ComponentDisk)), 0)
	require.InDelta(t, 0, testutil.ToFloat64(svc.metrics.sensorDegraded.WithLabelValues(ComponentMemory)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(svc.metrics.providerCalls.WithLabelValues(resultOK)), 0)

	count, err := testutil.GatherAndCount(reg, "deviceid_provider_call_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestServiceMetricsInvalidToken(t *testing.T) {
	svc := New(staticSource(pixel7), ProviderFunc(func(context.Context) (string, error) {
		return "00000000-0000-0000-0000-000000000000", nil
	})).WithMetrics(prometheus.NewRegistry())

	require.Equal(t, UnknownExternalID, svc.ExternalID(context.Background()))
	require.InDelta(t, 1, testutil.ToFloat64(svc.metrics.providerCalls.WithLabelValues(resultInvalid)), 0)
}

func TestServiceWithProviderTimeoutIgnoresNonPositive(t *testing.T) {
	svc := New(staticSource(pixel7), nil).WithProviderTimeout(0)

	require.Equal(t, defaultProviderTimeout, svc.providerTimeout)
}

func TestServiceMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := New(staticSource(pixel7), nil).WithMetrics(reg)
	second := New(staticSource(pixel7), nil)
	require.NotPanics(t, func() { second.WithMetrics(reg) })
	require.NotPanics(t, func() { first.WithMetrics(reg) })

	first.DeviceHash(context.Background())
	second.DeviceHash(context.Background())

	require.InDelta(t, 2, testutil.ToFloat64(first.metrics.hashDerivations), 0)
	require.InDelta(t, 2, testutil.ToFloat64(second.metrics.hashDerivations), 0)
}

func TestServiceMetricsProviderPanic(t *testing.T) {
	svc := New(staticSource(pixel7), ProviderFunc(func(context.Context) (string, error) {
		panic("sdk bug")
	})).WithMetrics(prometheus.NewRegistry())

	require.Equal(t, UnknownExternalID, svc.ExternalID(context.Background()))
	require.InDelta(t, 1, testutil.ToFloat64(svc.metrics.providerCalls.WithLabelValues(resultError)), 0)
}

func TestServiceDiagnosticsCarrySensorErrors(t *testing.T) {
	c := newTestCollector(t, 8589934592, 0)
	c.diskUsage = func(context.Context, string) (*disk.UsageStat, error) {
		return nil, errors.New("statfs failed")
	}

	svc := New(c, nil)
	svc.DeviceHash(context.Background())

	diag := svc.Diagnostics()
	require.Contains(t, diag.Collected, ComponentMemory)

	diskErr := diag.Errors[ComponentDisk]
	require.ErrorIs(t, diskErr, ErrSensorUnavailable)
	require.ErrorContains(t, diskErr, "statfs failed")

	require.Contains(t, diag.Errors, ComponentModel)
}
