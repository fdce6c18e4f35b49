// Package messaging hands admitted readings to the downstream broker.
package messaging

import (
	"context"

	"github.com/rgoncalves/sensor-data-ingestion/internal/telemetry"
)

// Publisher hands one admitted reading to the downstream queue as a
// telemetry event. Delivery guarantees beyond the handoff (retries,
// ordering, durability) belong to the concrete transport; the ingestion
// pipeline guarantees only that Publish is invoked at most once per
// admitted request.
type Publisher interface {
	Publish(ctx context.Context, reading telemetry.Reading) error
}
