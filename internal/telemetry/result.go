package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Stable machine-readable outcome codes for the caller-facing layer.
const (
	CodeAccepted      = "ACCEPTED"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidData   = "VALIDATION_ERROR"
	CodePublishFailed = "PUBLISH_FAILED"
)

// IngestionResult is the outcome of one admission attempt. On failure the
// id is the zero uuid sentinel and Success is false; the message is safe to
// return to callers (no registry state or secrets are ever echoed).
type IngestionResult struct {
	ID         uuid.UUID `json:"id"`
	DeviceID   string    `json:"sensor_id"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
	Success    bool      `json:"success"`
}

// Accepted builds the success result for an admitted reading.
func Accepted(r Reading) IngestionResult {
	return IngestionResult{
		ID:         r.ID,
		DeviceID:   r.DeviceID,
		Code:       CodeAccepted,
		Message:    "Telemetry received and queued successfully",
		ReceivedAt: r.ReceivedAt,
		Success:    true,
	}
}

// Rejected builds a failure result with the zero-id sentinel.
func Rejected(deviceID, code, message string) IngestionResult {
	return IngestionResult{
		ID:         uuid.Nil,
		DeviceID:   deviceID,
		Code:       code,
		Message:    message,
		ReceivedAt: time.Now().UTC(),
		Success:    false,
	}
}
