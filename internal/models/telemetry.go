package models

// TelemetryRequest is the POST /api/telemetry payload.
// reading_timestamp is optional; it defaults to the time of admission.
type TelemetryRequest struct {
	SensorID         string  `json:"sensor_id"`
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	ReadingTimestamp string  `json:"reading_timestamp,omitempty"`
}

// TokenRequest is the POST /api/auth/token payload (development only).
type TokenRequest struct {
	Subject string            `json:"subject"`
	Name    string            `json:"name,omitempty"`
	Claims  map[string]string `json:"claims,omitempty"`
}

// TokenResponse is returned by POST /api/auth/token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	TokenType string `json:"token_type"`
}
