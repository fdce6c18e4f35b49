package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rgoncalves/sensor-data-ingestion/internal/config"
	"github.com/rgoncalves/sensor-data-ingestion/internal/device"
	"github.com/rgoncalves/sensor-data-ingestion/internal/httpserver"
	"github.com/rgoncalves/sensor-data-ingestion/internal/ingest"
	"github.com/rgoncalves/sensor-data-ingestion/internal/messaging"
	"github.com/rgoncalves/sensor-data-ingestion/internal/metrics"
)

// main boots the service: config → device registry → broker → HTTP server.
func main() {
	log := initLogger()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	registry, registryReady, err := buildRegistry(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("initializing device registry")
	}

	publisher := messaging.NewRabbitPublisher(messaging.RabbitConfig{
		URL:        cfg.AMQPURL,
		Exchange:   cfg.TelemetryExchange,
		Queue:      cfg.TelemetryQueue,
		RoutingKey: cfg.TelemetryRoutingKey,
	}, log)
	if err := publisher.Start(); err != nil {
		log.WithError(err).Fatal("connecting to message broker")
	}
	defer publisher.Close()

	authenticator := device.NewAuthenticator(registry)
	pipeline := ingest.NewPipeline(authenticator, registry, publisher, log)
	collectors := metrics.New(prometheus.DefaultRegisterer)

	router := httpserver.NewRouter(cfg, httpserver.Deps{
		Pipeline: pipeline,
		Metrics:  collectors,
		Broker:   publisher,
		Registry: registryReady,
		Log:      log,
	})

	log.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("http server stopped")
	}
}

func initLogger() *logrus.Entry {
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)
	return logrus.WithField("service", "sensor-data-ingestion")
}

// buildRegistry selects the durable registry when a database is configured
// and falls back to the seeded in-memory registry otherwise.
func buildRegistry(cfg config.Config, log *logrus.Entry) (device.Registry, httpserver.ReadinessChecker, error) {
	if cfg.PostgresURL == "" {
		log.Info("no database configured, using seeded in-memory device registry")
		return device.NewSeededMemoryRegistry(), nil, nil
	}

	registry, err := device.NewPostgresRegistry(cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	if err := registry.EnsureSchema(); err != nil {
		return nil, nil, err
	}
	if err := registry.Seed(context.Background()); err != nil {
		return nil, nil, err
	}
	return registry, registry, nil
}
