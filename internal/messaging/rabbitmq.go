package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/rgoncalves/sensor-data-ingestion/internal/telemetry"
)

const exchangeTypeDirect = "direct"

// RabbitConfig holds the broker topology for telemetry events.
type RabbitConfig struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
}

// RabbitPublisher publishes telemetry events to a durable RabbitMQ queue.
// It reconnects with exponential backoff when the broker connection drops.
type RabbitPublisher struct {
	cfg RabbitConfig
	log *logrus.Entry

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewRabbitPublisher constructs the publisher. Call Start before Publish.
func NewRabbitPublisher(cfg RabbitConfig, log *logrus.Entry) *RabbitPublisher {
	return &RabbitPublisher{cfg: cfg, log: log}
}

// Start connects to the broker, retrying with exponential backoff, and
// declares the telemetry exchange and queue.
func (p *RabbitPublisher) Start() error {
	if err := backoff.Retry(p.connect, backoff.NewExponentialBackOff()); err != nil {
		return err
	}

	go p.notifyWhenClosed()
	return nil
}

func (p *RabbitPublisher) connect() error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := declareTopology(channel, p.cfg); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = channel
	p.mu.Unlock()

	p.log.WithField("exchange", p.cfg.Exchange).Info("connected to message broker")
	return nil
}

func declareTopology(channel *amqp.Channel, cfg RabbitConfig) error {
	if err := channel.ExchangeDeclare(cfg.Exchange, exchangeTypeDirect, true, false, false, false, nil); err != nil {
		return err
	}

	queue, err := channel.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	return channel.QueueBind(queue.Name, cfg.RoutingKey, cfg.Exchange, false, nil)
}

// notifyWhenClosed watches the connection and reconnects until Close.
func (p *RabbitPublisher) notifyWhenClosed() {
	for {
		p.mu.RLock()
		conn := p.conn
		p.mu.RUnlock()
		if conn == nil {
			return
		}

		errReason := <-conn.NotifyClose(make(chan *amqp.Error))

		p.mu.RLock()
		closed := p.closed
		p.mu.RUnlock()
		if closed {
			return
		}

		p.log.WithField("reason", errReason).Warn("broker connection closed, reconnecting")
		if err := backoff.Retry(p.connect, backoff.NewExponentialBackOff()); err != nil {
			p.log.WithError(err).Error("broker reconnect failed")
			return
		}
	}
}

// Publish converts the reading into a telemetry event, stamps the publish
// time and hands it to the broker as a persistent JSON message.
func (p *RabbitPublisher) Publish(ctx context.Context, reading telemetry.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()
	if channel == nil {
		return errors.New("messaging: broker not connected")
	}

	event := telemetry.NewEvent(reading, time.Now().UTC())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("messaging: encoding telemetry event: %w", err)
	}

	err = channel.Publish(p.cfg.Exchange, p.cfg.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.PublishedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("messaging: publishing telemetry event: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"sensor_id":   event.DeviceID,
		"reading_id":  event.ID,
		"temperature": event.Temperature,
		"humidity":    event.Humidity,
	}).Info("telemetry event published")

	return nil
}

// Ready reports whether the broker connection is usable; the readiness
// endpoint consults it.
func (p *RabbitPublisher) Ready(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("messaging: broker not connected")
	}
	return nil
}

// Close shuts the channel and connection down and stops reconnecting.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
