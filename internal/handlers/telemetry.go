package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rgoncalves/sensor-data-ingestion/internal/auth"
	"github.com/rgoncalves/sensor-data-ingestion/internal/ingest"
	"github.com/rgoncalves/sensor-data-ingestion/internal/metrics"
	"github.com/rgoncalves/sensor-data-ingestion/internal/models"
	"github.com/rgoncalves/sensor-data-ingestion/internal/telemetry"
)

// parseRFC3339 parses an RFC3339 timestamp and normalizes it to UTC.
func parseRFC3339(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// statusFor maps a failure code to its HTTP status. Success is always 202:
// the reading is queued, not processed.
func statusFor(code string) int {
	switch code {
	case telemetry.CodeUnauthorized:
		return http.StatusUnauthorized
	case telemetry.CodeInvalidData:
		return http.StatusBadRequest
	case telemetry.CodePublishFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RegisterTelemetryRoutes registers the ingestion-path endpoint.
//
// POST /telemetry
// - Requires a verified bearer identity and an X-Api-Key device secret
//   (both enforced by middleware before this handler runs)
// - Returns 202 once the reading is handed to the queue, 4xx/5xx with a
//   structured result otherwise
func RegisterTelemetryRoutes(r gin.IRoutes, pipeline *ingest.Pipeline, m *metrics.Metrics, log *logrus.Entry) {
	r.POST("/telemetry", func(c *gin.Context) {
		var req models.TelemetryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "invalid JSON payload"})
			return
		}

		cmd := telemetry.Command{
			DeviceID:    req.SensorID,
			Temperature: req.Temperature,
			Humidity:    req.Humidity,
			Secret:      auth.DeviceKey(c),
		}

		if req.ReadingTimestamp != "" {
			ts, err := parseRFC3339(req.ReadingTimestamp)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "reading_timestamp must be RFC3339"})
				return
			}
			cmd.ReadingTimestamp = &ts
		}

		done := m.MeasureProcessing(req.SensorID)
		result, err := pipeline.Process(c.Request.Context(), cmd)
		done()

		if err != nil {
			log.WithError(err).WithField("sensor_id", req.SensorID).Error("telemetry processing failed")
			m.ObserveRejected(req.SensorID, "internal")
			c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "internal server error"})
			return
		}

		if !result.Success {
			m.ObserveRejected(req.SensorID, result.Code)
			c.JSON(statusFor(result.Code), result)
			return
		}

		m.ObserveAccepted(req.SensorID, req.Temperature, req.Humidity)
		c.JSON(http.StatusAccepted, result)
	})
}
