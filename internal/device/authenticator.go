package device

import "context"

// Authenticator is the authentication policy boundary between the ingestion
// pipeline and the registry. Today it is a pass-through; rate limiting or
// revocation lists would slot in here without touching the pipeline.
type Authenticator struct {
	registry Registry
}

// NewAuthenticator wraps a registry.
func NewAuthenticator(registry Registry) *Authenticator {
	return &Authenticator{registry: registry}
}

// Authenticate reports whether the device is registered, active and the
// secret matches. Failure is a false, never an error; errors signal an
// unreachable registry only.
func (a *Authenticator) Authenticate(ctx context.Context, deviceID, secret string) (bool, error) {
	return a.registry.ValidateSecret(ctx, deviceID, secret)
}
