package telemetry

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reading is one admitted measurement. It is immutable after construction
// and consumed exactly once by the event publisher.
type Reading struct {
	ID               uuid.UUID `json:"id"`
	DeviceID         string    `json:"sensor_id"`
	Temperature      float64   `json:"temperature"`
	Humidity         float64   `json:"humidity"`
	ReadingTimestamp time.Time `json:"reading_timestamp"`
	ReceivedAt       time.Time `json:"received_at"`
}

// NewReading builds a reading, assigning its id and stamping reception time.
// The reading timestamp defaults to the admission time when the sensor did
// not supply one. All timestamps are normalized to UTC.
func NewReading(deviceID string, temperature, humidity float64, readingTimestamp *time.Time) (Reading, error) {
	if strings.TrimSpace(deviceID) == "" {
		return Reading{}, errors.New("telemetry: sensor id required")
	}

	now := time.Now().UTC()
	ts := now
	if readingTimestamp != nil {
		ts = readingTimestamp.UTC()
	}

	return Reading{
		ID:               uuid.New(),
		DeviceID:         deviceID,
		Temperature:      temperature,
		Humidity:         humidity,
		ReadingTimestamp: ts,
		ReceivedAt:       now,
	}, nil
}

// Valid re-checks the reading's own invariants. The validator already
// enforces them on the command; the value object does not trust its caller.
func (r Reading) Valid() bool {
	return strings.TrimSpace(r.DeviceID) != "" &&
		r.Humidity >= HumidityMin && r.Humidity <= HumidityMax &&
		r.Temperature >= TemperatureMin && r.Temperature <= TemperatureMax
}
