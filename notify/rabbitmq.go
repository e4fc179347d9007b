// Package notify publishes report lifecycle messages to RabbitMQ.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"eventreport/model"
)

// RoutingKeyReportGenerated is used for every ReportGeneratedEvent.
const RoutingKeyReportGenerated = "report.generated"

type connection interface {
	IsClosed() bool
	Close() error
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialer opens a connection and a channel with the exchange declared.
type dialer func(url, exchange string) (connection, channel, error)

// RabbitMQPublisher publishes to a durable topic exchange.
type RabbitMQPublisher struct {
	mu           sync.Mutex
	conn         connection
	channel      channel
	exchangeName string
	url          string
	dial         dialer
}

// NewRabbitMQPublisher dials url and declares the exchange.
func NewRabbitMQPublisher(url, exchangeName string) (*RabbitMQPublisher, error) {
	return newPublisher(url, exchangeName, dialAMQP)
}

func newPublisher(url, exchangeName string, dial dialer) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{exchangeName: exchangeName, url: url, dial: dial}
	if err := p.connect(); err != nil {
		return nil, err
	}
	log.Info().
		Str("exchange", exchangeName).
		Msg("RabbitMQ publisher initialized")
	return p, nil
}

func dialAMQP(url, exchange string) (connection, channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, ch, nil
}

func (p *RabbitMQPublisher) connect() error {
	conn, ch, err := p.dial(p.url, p.exchangeName)
	if err != nil {
		return err
	}
	p.conn = conn
	p.channel = ch
	return nil
}

// PublishReportGenerated announces a stored report.
func (p *RabbitMQPublisher) PublishReportGenerated(ctx context.Context, event model.ReportGeneratedEvent) error {
	return p.publish(ctx, RoutingKeyReportGenerated, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
		MessageId:    fmt.Sprintf("%d", time.Now().UnixNano()),
	}
	err = p.channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, msg)
	if err != nil {
		// Reconnect once and retry.
		log.Warn().Err(err).Str("routing_key", routingKey).Msg("Publish failed, reconnecting")
		p.closeLocked()
		if cerr := p.connect(); cerr != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
		if err = p.channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, msg); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
	}

	log.Info().
		Str("routing_key", routingKey).
		Str("exchange", p.exchangeName).
		Int("body_size", len(body)).
		Msg("Message published to RabbitMQ")
	return nil
}

func (p *RabbitMQPublisher) closeLocked() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close RabbitMQ connection")
			return err
		}
	}
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.closeLocked(); err != nil {
		return err
	}
	log.Info().Msg("RabbitMQ publisher closed")
	return nil
}
