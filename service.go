package deviceid

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/host"
	"golang.org/x/sync/singleflight"
)

// UnknownExternalID is returned by [Service.ExternalID] when no usable
// identifier could be obtained from the provider during this process.
const UnknownExternalID = ""

// defaultProviderTimeout bounds a single external identifier provider call.
const defaultProviderTimeout = 10 * time.Second

const externalIDKey = "external-id"

// AttributeSource produces attribute snapshots. [*Collector] is the
// production implementation.
type AttributeSource interface {
	Collect(ctx context.Context) Attributes
}

// errorReportingSource is an AttributeSource that also explains which
// sensors degraded and why. [*Collector] implements it.
type errorReportingSource interface {
	CollectWithErrors(ctx context.Context) (Attributes, map[string]error)
}

// DiagnosticInfo describes what the most recent [Service.DeviceHash] call
// was able to read.
type DiagnosticInfo struct {
	Errors    map[string]error // Component names that degraded with their errors
	Collected []string         // Component names that reported real values
}

// Service derives the device hash and holds the process-scoped cache of the
// external identifier. Configure it with the With* methods before first use;
// after that every method is safe for concurrent use.
//
// Create one Service per process and share it: the external identifier is
// requested from the provider at most once per Service.
type Service struct {
	source          AttributeSource
	provider        ExternalIDProvider
	logger          zerolog.Logger
	metrics         *metrics
	salt            string
	formatMode      FormatMode
	providerTimeout time.Duration
	includeHostID   bool
	includeMAC      bool

	hostID     func(context.Context) (string, error)
	interfaces interfaceLister

	diagMu      sync.Mutex
	diagnostics *DiagnosticInfo

	group      singleflight.Group
	mu         sync.RWMutex
	externalID string
	resolved   bool
}

// New creates a Service reading attributes from source and obtaining the
// external identifier from provider. A nil source uses [NewCollector]; a nil
// provider makes [Service.ExternalID] always return [UnknownExternalID].
func New(source AttributeSource, provider ExternalIDProvider) *Service {
	if source == nil {
		source = NewCollector()
	}

	return &Service{
		source:          source,
		provider:        provider,
		logger:          zerolog.Nop(),
		metrics:         newMetrics(nil),
		formatMode:      Format64,
		providerTimeout: defaultProviderTimeout,
		hostID:          host.HostIDWithContext,
		interfaces:      net.Interfaces,
	}
}

// WithSalt mixes an application-specific string into the device hash so
// that two applications on the same device produce different hashes.
func (s *Service) WithSalt(salt string) *Service {
	s.salt = salt

	return s
}

// WithFormat sets the device hash length.
// Use Format64 (default), Format32, Format128, or Format256.
func (s *Service) WithFormat(mode FormatMode) *Service {
	s.formatMode = mode

	return s
}

// WithHostID folds the operating system host identifier into the device hash.
func (s *Service) WithHostID() *Service {
	s.includeHostID = true

	return s
}

// WithMAC folds the MAC addresses of physical network interfaces into the
// device hash.
func (s *Service) WithMAC() *Service {
	s.includeMAC = true

	return s
}

// WithProviderTimeout bounds the external identifier provider call.
// Non-positive values keep the default of 10 seconds.
func (s *Service) WithProviderTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.providerTimeout = timeout
	}

	return s
}

// WithLogger sets the logger. The default logger discards everything.
func (s *Service) WithLogger(logger zerolog.Logger) *Service {
	s.logger = logger

	return s
}

// WithMetrics registers the Service collectors with reg. Services sharing
// a registerer share its collectors.
func (s *Service) WithMetrics(reg prometheus.Registerer) *Service {
	s.metrics = newMetrics(reg)

	return s
}

// DeviceHash derives the device hash from a fresh attribute snapshot.
// The result is not cached: attribute drift, such as a resized disk, is
// reflected on the next call. Sensors that cannot be read contribute their
// sentinel value, so a well-formed hash is always returned.
func (s *Service) DeviceHash(ctx context.Context) string {
	var attrs Attributes
	var sensorErrs map[string]error
	if src, ok := s.source.(errorReportingSource); ok {
		attrs, sensorErrs = src.CollectWithErrors(ctx)
	} else {
		attrs = s.source.Collect(ctx)
	}

	diag := &DiagnosticInfo{Errors: make(map[string]error)}
	degraded := attrs.Degraded()
	for _, component := range []string{ComponentModel, ComponentMemory, ComponentDisk} {
		if slices.Contains(degraded, component) {
			err := ErrSensorUnavailable
			if cause := sensorErrs[component]; cause != nil {
				err = fmt.Errorf("%w: %w", ErrSensorUnavailable, cause)
			}
			diag.Errors[component] = &ComponentError{Component: component, Err: err}
			s.metrics.sensorDegraded.WithLabelValues(component).Inc()

			continue
		}
		diag.Collected = append(diag.Collected, component)
	}

	fields := canonicalFields(attrs)

	if s.includeHostID {
		fields = s.appendSignal(fields, ComponentHostID, func() (string, error) {
			return s.hostID(ctx)
		}, diag)
	}

	if s.includeMAC {
		fields = s.appendSignal(fields, ComponentMAC, func() (string, error) {
			macs, err := collectMACAddresses(s.interfaces, s.logger)
			if err != nil {
				return "", err
			}

			return strings.Join(macs, ","), nil
		}, diag)
	}

	hash := deriveHash(fields, s.salt, s.formatMode)

	s.diagMu.Lock()
	s.diagnostics = diag
	s.diagMu.Unlock()

	s.metrics.hashDerivations.Inc()
	s.logger.Debug().
		Str("platform", runtime.GOOS).
		Strs("collected", diag.Collected).
		Int("errors_count", len(diag.Errors)).
		Msg("device hash derived")

	return hash
}

// Validate reports whether hash matches the device hash derived now.
func (s *Service) Validate(ctx context.Context, hash string) bool {
	return s.DeviceHash(ctx) == hash
}

// Diagnostics returns what the most recent [Service.DeviceHash] call read.
// Returns nil if DeviceHash has not been called yet.
func (s *Service) Diagnostics() *DiagnosticInfo {
	s.diagMu.Lock()
	defer s.diagMu.Unlock()

	return s.diagnostics
}

// appendSignal adds the value of an optional signal to fields, recording
// the outcome in diag. Signals that cannot be read are skipped.
func (s *Service) appendSignal(fields []string, component string, read func() (string, error), diag *DiagnosticInfo) []string {
	value, err := read()
	if err == nil && strings.TrimSpace(value) == "" {
		err = ErrNotFound
	}

	if err != nil {
		diag.Errors[component] = &ComponentError{Component: component, Err: err}
		s.metrics.sensorDegraded.WithLabelValues(component).Inc()
		s.logger.Warn().Err(err).Str("component", component).Msg("signal skipped")

		return fields
	}

	diag.Collected = append(diag.Collected, component)

	return append(fields, strings.TrimSpace(value))
}

// ExternalID returns the external identifier. The first call asks the
// provider; the answer, or [UnknownExternalID] if the provider failed, is
// kept for the life of the Service and the provider is never asked again.
// Concurrent first callers share a single provider call.
//
// If ctx ends before the provider answers, ExternalID returns
// [UnknownExternalID] without waiting; the pending call still completes in
// the background, bounded by the provider timeout, and fills the cache.
func (s *Service) ExternalID(ctx context.Context) string {
	if id, ok := s.CachedExternalID(); ok {
		return id
	}

	ch := s.group.DoChan(externalIDKey, func() (any, error) {
		return s.resolveExternalID(ctx), nil
	})

	select {
	case res := <-ch:
		return res.Val.(string)
	case <-ctx.Done():
		s.logger.Warn().Err(ctx.Err()).Msg("caller gave up waiting for external identifier")

		return UnknownExternalID
	}
}

// CachedExternalID returns the cached external identifier without calling
// the provider. ok is false until the first resolution has completed.
func (s *Service) CachedExternalID() (id string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.externalID, s.resolved
}

// TraceID returns "<external id>_<unix milliseconds of at>", the correlation
// key used for requests that need to be tied to this device.
func (s *Service) TraceID(ctx context.Context, at time.Time) string {
	return fmt.Sprintf("%s_%d", s.ExternalID(ctx), at.UnixMilli())
}

// resolveExternalID runs inside the single flight. It re-checks the cache
// because a previous flight may have finished after the caller looked.
func (s *Service) resolveExternalID(ctx context.Context) string {
	if id, ok := s.CachedExternalID(); ok {
		return id
	}

	id := s.callProvider(ctx)

	s.mu.Lock()
	s.externalID = id
	s.resolved = true
	s.mu.Unlock()

	return id
}

type providerResult struct {
	token string
	err   error
}

func (s *Service) callProvider(ctx context.Context) string {
	if s.provider == nil {
		s.logger.Warn().Err(ErrProviderUnavailable).Msg("no external identifier provider configured")

		return UnknownExternalID
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.providerTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan providerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- providerResult{err: fmt.Errorf("%w: provider panicked: %v", ErrProviderUnavailable, r)}
			}
		}()

		token, err := s.provider.ExternalID(callCtx)
		done <- providerResult{token: token, err: err}
	}()

	var res providerResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = callCtx.Err()
	}
	s.metrics.providerDuration.Observe(time.Since(start).Seconds())

	if res.err != nil {
		result := resultError
		if errors.Is(res.err, context.DeadlineExceeded) {
			result = resultTimeout
		}
		s.metrics.providerCalls.WithLabelValues(result).Inc()
		s.logger.Warn().
			Err(fmt.Errorf("%w: %w", ErrProviderUnavailable, res.err)).
			Msg("external identifier unavailable, using sentinel")

		return UnknownExternalID
	}

	token, err := validateToken(res.token)
	if err != nil {
		s.metrics.providerCalls.WithLabelValues(resultInvalid).Inc()
		s.logger.Warn().Err(err).Msg("external identifier rejected, using sentinel")

		return UnknownExternalID
	}

	s.metrics.providerCalls.WithLabelValues(resultOK).Inc()
	s.logger.Info().Dur("took", time.Since(start)).Msg("external identifier resolved")

	return token
}
