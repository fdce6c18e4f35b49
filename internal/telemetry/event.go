package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Event is the wire representation of a reading handed to the message
// broker. Field names and types are the compatibility contract with
// downstream consumers; timestamps are UTC.
type Event struct {
	ID               uuid.UUID `json:"id"`
	DeviceID         string    `json:"sensor_id"`
	Temperature      float64   `json:"temperature"`
	Humidity         float64   `json:"humidity"`
	ReadingTimestamp time.Time `json:"reading_timestamp"`
	ReceivedAt       time.Time `json:"received_at"`
	PublishedAt      time.Time `json:"published_at"`
}

// NewEvent wraps a reading for publication, stamping the publish time.
func NewEvent(r Reading, publishedAt time.Time) Event {
	return Event{
		ID:               r.ID,
		DeviceID:         r.DeviceID,
		Temperature:      r.Temperature,
		Humidity:         r.Humidity,
		ReadingTimestamp: r.ReadingTimestamp,
		ReceivedAt:       r.ReceivedAt,
		PublishedAt:      publishedAt.UTC(),
	}
}
