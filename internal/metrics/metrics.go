// Package metrics exposes the telemetry ingestion counters. Collectors are
// created once at bootstrap and handed to the transport layer by reference.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the ingestion collectors.
type Metrics struct {
	receivedTotal      *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	temperature        *prometheus.GaugeVec
	humidity           *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		receivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_telemetry_received_total",
			Help: "Total telemetry received",
		}, []string{"sensor_id", "status"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_telemetry_errors_total",
			Help: "Total telemetry processing errors",
		}, []string{"sensor_id", "error_type"}),
		processingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sensor_telemetry_processing_duration_seconds",
			Help:    "Telemetry processing duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"sensor_id"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensor_temperature_celsius",
			Help: "Current sensor temperature in Celsius",
		}, []string{"sensor_id"}),
		humidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensor_humidity_percentage",
			Help: "Current sensor humidity percentage",
		}, []string{"sensor_id"}),
	}

	reg.MustRegister(m.receivedTotal, m.errorsTotal, m.processingDuration, m.temperature, m.humidity)
	return m
}

// ObserveAccepted records a successful admission and the sensor's latest values.
func (m *Metrics) ObserveAccepted(sensorID string, temperature, humidity float64) {
	m.receivedTotal.WithLabelValues(sensorID, "success").Inc()
	m.temperature.WithLabelValues(sensorID).Set(temperature)
	m.humidity.WithLabelValues(sensorID).Set(humidity)
}

// ObserveRejected records a failed admission with its error type.
func (m *Metrics) ObserveRejected(sensorID, errorType string) {
	m.receivedTotal.WithLabelValues(sensorID, "failure").Inc()
	m.errorsTotal.WithLabelValues(sensorID, errorType).Inc()
}

// MeasureProcessing starts a processing timer; the returned func stops it.
func (m *Metrics) MeasureProcessing(sensorID string) func() {
	timer := prometheus.NewTimer(m.processingDuration.WithLabelValues(sensorID))
	return func() { timer.ObserveDuration() }
}
