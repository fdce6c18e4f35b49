package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReading(t *testing.T) {
	before := time.Now().UTC()
	r, err := NewReading("SENSOR-001", 25.5, 60.0, nil)
	after := time.Now().UTC()
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, "SENSOR-001", r.DeviceID)
	assert.Equal(t, 25.5, r.Temperature)
	assert.Equal(t, 60.0, r.Humidity)

	// Missing reading timestamp defaults to the admission time.
	assert.Equal(t, r.ReceivedAt, r.ReadingTimestamp)
	assert.False(t, r.ReceivedAt.Before(before))
	assert.False(t, r.ReceivedAt.After(after))
}

func TestNewReadingKeepsSuppliedTimestamp(t *testing.T) {
	ts := time.Date(2024, 6, 1, 8, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	r, err := NewReading("SENSOR-001", 25.5, 60.0, &ts)
	require.NoError(t, err)

	assert.Equal(t, ts.UTC(), r.ReadingTimestamp)
	assert.Equal(t, time.UTC, r.ReadingTimestamp.Location())
	assert.NotEqual(t, r.ReadingTimestamp, r.ReceivedAt)
}

func TestNewReadingRequiresDeviceID(t *testing.T) {
	_, err := NewReading("", 25.5, 60.0, nil)
	assert.Error(t, err)

	_, err = NewReading("   ", 25.5, 60.0, nil)
	assert.Error(t, err)
}

func TestReadingValid(t *testing.T) {
	for _, tc := range []struct {
		name        string
		temperature float64
		humidity    float64
		valid       bool
	}{
		{"nominal", 25.5, 60.0, true},
		{"temperature lower bound", -50, 50, true},
		{"temperature upper bound", 100, 50, true},
		{"humidity bounds", 0, 100, true},
		{"temperature too low", -50.0001, 50, false},
		{"temperature too high", 100.0001, 50, false},
		{"humidity too low", 25, -0.0001, false},
		{"humidity too high", 25, 100.0001, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewReading("SENSOR-001", tc.temperature, tc.humidity, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.valid, r.Valid())
		})
	}
}

func TestNewEventRoundTrip(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r, err := NewReading("SENSOR-001", 25.5, 60.0, &ts)
	require.NoError(t, err)

	publishedAt := time.Now()
	event := NewEvent(r, publishedAt)

	assert.Equal(t, r.ID, event.ID)
	assert.Equal(t, r.DeviceID, event.DeviceID)
	assert.Equal(t, r.Temperature, event.Temperature)
	assert.Equal(t, r.Humidity, event.Humidity)
	assert.Equal(t, r.ReadingTimestamp, event.ReadingTimestamp)
	assert.Equal(t, r.ReceivedAt, event.ReceivedAt)
	assert.Equal(t, publishedAt.UTC(), event.PublishedAt)

	// The wire contract: stable snake_case names, values preserved.
	body, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, r.ID.String(), decoded["id"])
	assert.Equal(t, "SENSOR-001", decoded["sensor_id"])
	assert.Equal(t, 25.5, decoded["temperature"])
	assert.Equal(t, 60.0, decoded["humidity"])
	assert.Contains(t, decoded, "reading_timestamp")
	assert.Contains(t, decoded, "received_at")
	assert.Contains(t, decoded, "published_at")
}
