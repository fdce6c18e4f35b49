package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoncalves/sensor-data-ingestion/internal/device"
	"github.com/rgoncalves/sensor-data-ingestion/internal/telemetry"
)

// spyPublisher records publish invocations and optionally fails them.
type spyPublisher struct {
	mu        sync.Mutex
	published []telemetry.Reading
	err       error
}

func (s *spyPublisher) Publish(_ context.Context, reading telemetry.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, reading)
	return nil
}

func (s *spyPublisher) calls() []telemetry.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.Reading(nil), s.published...)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestPipeline(t *testing.T) (*Pipeline, *spyPublisher, *device.MemoryRegistry) {
	t.Helper()
	registry := device.NewSeededMemoryRegistry()
	publisher := &spyPublisher{}
	pipeline := NewPipeline(device.NewAuthenticator(registry), registry, publisher, testLogger())
	return pipeline, publisher, registry
}

func validCommand() telemetry.Command {
	return telemetry.Command{
		DeviceID:    "SENSOR-001",
		Temperature: 25.5,
		Humidity:    60.0,
		Secret:      "api-key-sensor-001",
	}
}

func TestProcessAdmitsValidReading(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)

	result, err := pipeline.Process(context.Background(), validCommand())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, "SENSOR-001", result.DeviceID)
	assert.Equal(t, telemetry.CodeAccepted, result.Code)
	assert.Contains(t, result.Message, "queued")
	assert.False(t, result.ReceivedAt.IsZero())

	// Exactly one publish, carrying the reading unchanged.
	calls := publisher.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, result.ID, calls[0].ID)
	assert.Equal(t, "SENSOR-001", calls[0].DeviceID)
	assert.Equal(t, 25.5, calls[0].Temperature)
	assert.Equal(t, 60.0, calls[0].Humidity)
	assert.Equal(t, result.ReceivedAt, calls[0].ReceivedAt)
}

func TestProcessStampsLastReading(t *testing.T) {
	pipeline, _, registry := newTestPipeline(t)

	result, err := pipeline.Process(context.Background(), validCommand())
	require.NoError(t, err)
	require.True(t, result.Success)

	d, err := registry.Lookup(context.Background(), "SENSOR-001")
	require.NoError(t, err)
	require.NotNil(t, d.LastReadingAt)
	assert.Equal(t, result.ReceivedAt, *d.LastReadingAt)
}

func TestProcessRejectsWrongSecret(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)

	cmd := validCommand()
	cmd.Secret = "bad-secret"

	result, err := pipeline.Process(context.Background(), cmd)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, uuid.Nil, result.ID)
	assert.Equal(t, telemetry.CodeUnauthorized, result.Code)
	assert.Contains(t, result.Message, "Unauthorized")
	assert.Empty(t, publisher.calls(), "publish must never be attempted on auth failure")
}

func TestProcessRejectsUnknownDevice(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)

	cmd := validCommand()
	cmd.DeviceID = "SENSOR-999"

	result, err := pipeline.Process(context.Background(), cmd)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, telemetry.CodeUnauthorized, result.Code)
	// Existence is not leaked: same outcome as a wrong secret.
	assert.Contains(t, result.Message, "Unauthorized")
	assert.NotContains(t, result.Message, "not found")
	assert.Empty(t, publisher.calls())
}

func TestProcessRejectsInactiveDevice(t *testing.T) {
	pipeline, publisher, registry := newTestPipeline(t)

	d, err := registry.Lookup(context.Background(), "SENSOR-001")
	require.NoError(t, err)
	d.Deactivate()
	require.NoError(t, registry.Update(context.Background(), d))

	result, err := pipeline.Process(context.Background(), validCommand())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, telemetry.CodeUnauthorized, result.Code)
	assert.Empty(t, publisher.calls())
}

func TestProcessRejectsInvalidData(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)

	cmd := validCommand()
	cmd.Temperature = 150
	cmd.Humidity = -5

	result, err := pipeline.Process(context.Background(), cmd)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, uuid.Nil, result.ID)
	assert.Equal(t, telemetry.CodeInvalidData, result.Code)
	// Every violated field is reported, not just the first.
	assert.Contains(t, result.Message, "temperature")
	assert.Contains(t, result.Message, "humidity")
	assert.Empty(t, publisher.calls(), "publish must never be attempted on validation failure")
}

func TestProcessAuthenticationPrecedesValidation(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)

	cmd := validCommand()
	cmd.Secret = "bad-secret"
	cmd.Temperature = 150

	result, err := pipeline.Process(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, telemetry.CodeUnauthorized, result.Code)
	assert.Empty(t, publisher.calls())
}

func TestProcessSurfacesPublishFailure(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)
	publisher.err = errors.New("broker unavailable")

	result, err := pipeline.Process(context.Background(), validCommand())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, uuid.Nil, result.ID)
	assert.Equal(t, telemetry.CodePublishFailed, result.Code)
	assert.NotContains(t, result.Message, "broker unavailable", "transport errors are not echoed to callers")
}

func TestProcessAbortsWhenCancelledBeforePublish(t *testing.T) {
	pipeline, publisher, _ := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Process(ctx, validCommand())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, publisher.calls(), "no publish after cancellation")
}

func TestProcessRegistryErrorIsInfrastructureFailure(t *testing.T) {
	registry := device.NewSeededMemoryRegistry()
	publisher := &spyPublisher{}
	pipeline := NewPipeline(failingAuthenticator{}, registry, publisher, testLogger())

	_, err := pipeline.Process(context.Background(), validCommand())
	require.Error(t, err)
	assert.Empty(t, publisher.calls())
}

type failingAuthenticator struct{}

func (failingAuthenticator) Authenticate(context.Context, string, string) (bool, error) {
	return false, errors.New("registry unreachable")
}
