package device

import (
	"context"
	"sync"
	"time"
)

// Registry is the device store consulted on every ingestion request.
// Implementations must be safe for concurrent use; each method call is
// atomic with respect to other calls, but calls are not ordered relative
// to each other (last write wins on concurrent updates of the same device).
type Registry interface {
	// Lookup returns the device for the given sensor id, or nil when it
	// is not registered. A missing device is not an error.
	Lookup(ctx context.Context, deviceID string) (*Device, error)

	// ValidateSecret reports whether the device exists, is active and the
	// secret matches. The three failure cases are deliberately collapsed
	// into a single false so callers cannot probe which devices exist.
	ValidateSecret(ctx context.Context, deviceID, secret string) (bool, error)

	// Add registers a device, replacing any record with the same sensor id.
	Add(ctx context.Context, d *Device) error

	// Update upserts a device by sensor id.
	Update(ctx context.Context, d *Device) error

	// TouchLastReading stamps the device's last-reading timestamp.
	// Unknown devices are ignored.
	TouchLastReading(ctx context.Context, deviceID string, at time.Time) error
}

// MemoryRegistry is an in-memory Registry for development and testing.
// In production the Postgres-backed registry replaces it.
type MemoryRegistry struct {
	mu      sync.RWMutex
	devices map[string]Device
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{devices: make(map[string]Device)}
}

// NewSeededMemoryRegistry creates an in-memory registry pre-populated with
// the default development sensors.
func NewSeededMemoryRegistry() *MemoryRegistry {
	r := NewMemoryRegistry()
	for _, d := range DefaultSeed() {
		r.devices[d.DeviceID] = *d
	}
	return r
}

// DefaultSeed returns the sample sensors registered at process start so a
// cold deployment can be smoke-tested immediately.
func DefaultSeed() []*Device {
	seed := []struct {
		id, secret, name, location string
	}{
		{"SENSOR-001", "api-key-sensor-001", "Temperature Sensor Room 1", "Room 1"},
		{"SENSOR-002", "api-key-sensor-002", "Temperature Sensor Room 2", "Room 2"},
		{"SENSOR-003", "api-key-sensor-003", "Humidity Sensor Laboratory", "Laboratory"},
	}

	devices := make([]*Device, 0, len(seed))
	for _, s := range seed {
		d, err := New(s.id, s.secret, s.name, s.location)
		if err != nil {
			// Seed data is compile-time constant; a failure here is a bug.
			panic(err)
		}
		devices = append(devices, d)
	}
	return devices
}

// Lookup returns a copy of the stored device so callers cannot mutate
// registry state without going through Update.
func (r *MemoryRegistry) Lookup(_ context.Context, deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// ValidateSecret implements the boolean-only secret check.
func (r *MemoryRegistry) ValidateSecret(_ context.Context, deviceID, secret string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return false, nil
	}
	return d.ValidateSecret(secret), nil
}

// Add registers the device, replacing an existing record with the same id.
func (r *MemoryRegistry) Add(_ context.Context, d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[d.DeviceID] = *d
	return nil
}

// Update upserts the device by sensor id.
func (r *MemoryRegistry) Update(_ context.Context, d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[d.DeviceID] = *d
	return nil
}

// TouchLastReading stamps the last-reading timestamp in place.
func (r *MemoryRegistry) TouchLastReading(_ context.Context, deviceID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return nil
	}
	d.TouchLastReading(at)
	r.devices[deviceID] = d
	return nil
}
