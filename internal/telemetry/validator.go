package telemetry

import (
	"fmt"
	"strings"
)

// Measurement bounds and field limits for an admissible reading.
const (
	TemperatureMin = -50.0
	TemperatureMax = 100.0
	HumidityMin    = 0.0
	HumidityMax    = 100.0

	DeviceIDMaxLength = 100
)

// FieldError names one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every violated rule. All rules are evaluated
// independently so the caller sees the full list, not just the first.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateCommand checks the command's fields against the admission rules.
// It returns nil when the command is valid.
func ValidateCommand(cmd Command) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(cmd.DeviceID) == "" {
		errs = append(errs, FieldError{Field: "sensor_id", Message: "sensor id is required"})
	} else if len(cmd.DeviceID) > DeviceIDMaxLength {
		errs = append(errs, FieldError{
			Field:   "sensor_id",
			Message: fmt.Sprintf("sensor id must be at most %d characters", DeviceIDMaxLength),
		})
	}

	if cmd.Temperature < TemperatureMin || cmd.Temperature > TemperatureMax {
		errs = append(errs, FieldError{
			Field:   "temperature",
			Message: fmt.Sprintf("temperature must be between %.0f°C and %.0f°C", TemperatureMin, TemperatureMax),
		})
	}

	if cmd.Humidity < HumidityMin || cmd.Humidity > HumidityMax {
		errs = append(errs, FieldError{
			Field:   "humidity",
			Message: fmt.Sprintf("humidity must be between %.0f%% and %.0f%%", HumidityMin, HumidityMax),
		})
	}

	if strings.TrimSpace(cmd.Secret) == "" {
		errs = append(errs, FieldError{Field: "api_key", Message: "api key is required"})
	}

	return errs
}
