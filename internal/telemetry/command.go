package telemetry

import "time"

// Command is one inbound admission request: the sensor's measurement plus
// the caller-supplied device secret. The bearer identity of the calling
// party is verified by the transport layer before a Command is built.
type Command struct {
	DeviceID         string
	Temperature      float64
	Humidity         float64
	ReadingTimestamp *time.Time
	Secret           string
}
