package device

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Device represents a registered sensor and its shared secret.
type Device struct {
	ID            uuid.UUID  `json:"id"`
	DeviceID      string     `json:"sensor_id"`
	Secret        string     `json:"-"`
	Name          string     `json:"name,omitempty"`
	Location      string     `json:"location,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastReadingAt *time.Time `json:"last_reading_at,omitempty"`
}

// New constructs an active device. DeviceID and secret are mandatory;
// a device without them is a programming error, so construction fails fast.
func New(deviceID, secret, name, location string) (*Device, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, errors.New("device: sensor id required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("device: secret required")
	}

	return &Device{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Secret:    secret,
		Name:      name,
		Location:  location,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ValidateSecret reports whether the given secret grants access.
// An inactive device never validates, even with the correct secret.
func (d *Device) ValidateSecret(secret string) bool {
	return d.Active && d.Secret == secret
}

// Activate re-enables the device.
func (d *Device) Activate() {
	d.Active = true
}

// Deactivate disables the device without removing it from the registry.
func (d *Device) Deactivate() {
	d.Active = false
}

// TouchLastReading records when the device last delivered a reading.
func (d *Device) TouchLastReading(at time.Time) {
	at = at.UTC()
	d.LastReadingAt = &at
}
