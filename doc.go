// Package deviceid collects host attributes and derives device identifiers
// from them.
//
// # Overview
//
// A [Collector] reads three attributes: the device model, the installed
// physical memory and the total capacity of the system volume. A [Service]
// turns a fresh snapshot of those attributes into a deterministic device
// hash, and caches an identifier issued by an external provider (an
// advertising or analytics SDK, the operating system installation id, ...)
// for the life of the process.
//
// # Quick Start
//
//	svc := deviceid.New(deviceid.NewCollector(), &deviceid.RandomProvider{})
//	hash := svc.DeviceHash(ctx)
//	id := svc.ExternalID(ctx)
//
// # Device Hash
//
// The hash is SHA-256 over the SHA-256 digests of each canonical field, in
// the order model, memory, disk. Sizes are rendered in base 10. See [Hash]
// for the exact construction; any implementation following it produces the
// same output for the same attributes.
//
// The hash is not cached. Disk capacity is one of its inputs, so the value
// changes after storage changes, OS reinstalls or factory resets. This is a
// known limitation, not a defect.
//
// Optional inputs: [Service.WithSalt], [Service.WithHostID],
// [Service.WithMAC]. Output length: [Service.WithFormat] with [Format32],
// [Format64] (default), [Format128] or [Format256].
//
// # Sentinels
//
// No accessor returns an error. Values that could not be obtained are
// replaced by sentinels that callers compare against:
//
//   - [UnknownModel] for the model
//   - [UnknownSize] for memory and disk
//   - [UnknownExternalID] for the external identifier
//
// [Service.Diagnostics] and the log output carry the underlying errors when
// the attribute source is a [Collector].
//
// # External Identifier
//
// [Service.ExternalID] calls the provider once per Service. Concurrent first
// callers share that call. A failure is cached as [UnknownExternalID] and is
// not retried; a new attempt needs a new process. The provider call is
// bounded by [Service.WithProviderTimeout].
//
// # Logging and Metrics
//
// Pass a [github.com/rs/zerolog.Logger] to [Collector.WithLogger] and
// [Service.WithLogger]; the default discards everything. [Service.WithMetrics]
// registers Prometheus collectors.
//
// # CLI Tool
//
// A command-line tool is provided in cmd/deviceid:
//
//	deviceid
//	deviceid attributes -o json
//	deviceid external --provider random
//	deviceid validate <hash>
package deviceid
