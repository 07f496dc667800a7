package deviceid

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// ExternalIDProvider issues or retrieves an identifier owned by a third
// party, such as an advertising or analytics SDK.
type ExternalIDProvider interface {
	ExternalID(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to [ExternalIDProvider].
type ProviderFunc func(ctx context.Context) (string, error)

// ExternalID calls f.
func (f ProviderFunc) ExternalID(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticProvider returns a provider that always answers token. Host
// applications use it to hand over an identifier obtained elsewhere.
func StaticProvider(token string) ExternalIDProvider {
	return ProviderFunc(func(context.Context) (string, error) {
		if strings.TrimSpace(token) == "" {
			return "", ErrProviderUnavailable
		}

		return token, nil
	})
}

// RandomProvider issues a random UUIDv4 on its first call and repeats it
// afterwards. It stands in for an install-scoped SDK identifier.
type RandomProvider struct {
	once  sync.Once
	token string
	err   error
}

// ExternalID implements [ExternalIDProvider].
func (p *RandomProvider) ExternalID(context.Context) (string, error) {
	p.once.Do(func() {
		id, err := uuid.NewRandom()
		if err != nil {
			p.err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)

			return
		}
		p.token = id.String()
	})

	return p.token, p.err
}

// MachineProvider returns the operating system installation identifier,
// protected with HMAC-SHA256 keyed by AppID so that the raw value is never
// exposed.
type MachineProvider struct {
	AppID string
}

// ExternalID implements [ExternalIDProvider].
func (p MachineProvider) ExternalID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if p.AppID == "" {
		return "", fmt.Errorf("%w: app id is required", ErrProviderUnavailable)
	}

	id, err := machineid.ProtectedID(p.AppID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	return id, nil
}

// validateToken trims token and rejects empty values and the all-zero UUID
// that advertising SDKs report when tracking is not authorized.
func validateToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	if id, err := uuid.Parse(token); err == nil && id == uuid.Nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, ErrNotAuthorized)
	}

	return token, nil
}
