// Package ingest implements the request-admission pipeline: authenticate
// the device, validate the payload, construct the reading and publish it.
package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rgoncalves/sensor-data-ingestion/internal/device"
	"github.com/rgoncalves/sensor-data-ingestion/internal/messaging"
	"github.com/rgoncalves/sensor-data-ingestion/internal/telemetry"
)

// Authenticator verifies a device's shared secret.
type Authenticator interface {
	Authenticate(ctx context.Context, deviceID, secret string) (bool, error)
}

// Pipeline orchestrates one admission attempt per call. It is stateless
// across calls and safe for concurrent use; the registry is the only
// shared mutable collaborator.
type Pipeline struct {
	auth      Authenticator
	registry  device.Registry
	publisher messaging.Publisher
	log       *logrus.Entry
}

// NewPipeline wires the pipeline's collaborators. The logger is injected
// so the pipeline never reaches for process-global state.
func NewPipeline(auth Authenticator, registry device.Registry, publisher messaging.Publisher, log *logrus.Entry) *Pipeline {
	return &Pipeline{
		auth:      auth,
		registry:  registry,
		publisher: publisher,
		log:       log,
	}
}

// Process runs the admission stages in strict order: authenticate,
// validate, construct, publish. Business failures (unauthorized device,
// invalid data, broker rejection) come back as a failure result with a
// stable code; the returned error is reserved for infrastructure faults
// and cancellation, which the transport layer maps to a generic failure.
//
// Publish is invoked at most once per call, and only after every
// preceding gate has passed.
func (p *Pipeline) Process(ctx context.Context, cmd telemetry.Command) (telemetry.IngestionResult, error) {
	log := p.log.WithField("sensor_id", cmd.DeviceID)
	log.Info("processing telemetry")

	ok, err := p.auth.Authenticate(ctx, cmd.DeviceID, cmd.Secret)
	if err != nil {
		return telemetry.IngestionResult{}, fmt.Errorf("ingest: verifying device credentials: %w", err)
	}
	if !ok {
		log.Warn("unauthorized sensor or invalid api key")
		return telemetry.Rejected(cmd.DeviceID, telemetry.CodeUnauthorized,
			"Unauthorized sensor or invalid API Key"), nil
	}

	if errs := telemetry.ValidateCommand(cmd); len(errs) > 0 {
		log.WithField("errors", errs.Error()).Warn("invalid telemetry data")
		return telemetry.Rejected(cmd.DeviceID, telemetry.CodeInvalidData,
			"Invalid telemetry data: "+errs.Error()), nil
	}

	reading, err := telemetry.NewReading(cmd.DeviceID, cmd.Temperature, cmd.Humidity, cmd.ReadingTimestamp)
	if err != nil {
		return telemetry.IngestionResult{}, fmt.Errorf("ingest: constructing reading: %w", err)
	}
	if !reading.Valid() {
		log.Warn("invalid telemetry data")
		return telemetry.Rejected(cmd.DeviceID, telemetry.CodeInvalidData,
			"Invalid telemetry data"), nil
	}

	// Last cancellation checkpoint; once Publish is invoked the call runs
	// to completion and its outcome is surfaced.
	if err := ctx.Err(); err != nil {
		return telemetry.IngestionResult{}, err
	}

	if err := p.publisher.Publish(ctx, reading); err != nil {
		log.WithError(err).Error("publishing telemetry event failed")
		return telemetry.Rejected(cmd.DeviceID, telemetry.CodePublishFailed,
			"Telemetry could not be queued"), nil
	}

	if err := p.registry.TouchLastReading(ctx, cmd.DeviceID, reading.ReceivedAt); err != nil {
		// The reading is already queued; a stale last-reading stamp is
		// not worth failing the request over.
		log.WithError(err).Warn("updating last-reading timestamp failed")
	}

	log.WithField("reading_id", reading.ID).Info("telemetry queued")
	return telemetry.Accepted(reading), nil
}
