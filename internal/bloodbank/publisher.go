package bloodbank

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/delorenj/perth/internal/log"
)

// connState is the Publisher's internal state machine.
type connState int

const (
	stateDisabled connState = iota
	stateDisconnected
	stateConnected
)

// Config configures the Publisher.
type Config struct {
	Enabled          bool   `toml:"enabled"`
	AMQPURL          string `toml:"amqp_url"`
	Exchange         string `toml:"exchange"`
	RoutingKeyPrefix string `toml:"routing_key_prefix"`
}

// DefaultConfig matches the original's disabled-by-default posture.
func DefaultConfig() Config {
	return Config{
		Enabled:          false,
		AMQPURL:          "amqp://127.0.0.1:5672/%2f",
		Exchange:         "bloodbank.events",
		RoutingKeyPrefix: "perth",
	}
}

// Publisher emits event envelopes onto a durable topic exchange. It is
// best-effort: every failure (connect, channel, declare, marshal, publish)
// is logged and swallowed, never returned to the caller.
type Publisher struct {
	cfg Config

	mu      sync.Mutex
	state   connState
	conn    amqpConnection
	channel amqpChannel
}

// New builds a Publisher. A disabled config stays disabled for the
// Publisher's entire lifetime — Publish becomes a silent no-op.
func New(cfg Config) *Publisher {
	state := stateDisconnected
	if !cfg.Enabled {
		state = stateDisabled
	}
	return &Publisher{cfg: cfg, state: state}
}

// Publish sends payload under eventType. milestone dual-emit is the
// caller's responsibility (see PublishIntentLogged).
func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}, metadata Metadata) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisabled {
		return
	}

	if p.state == stateDisconnected || !p.channelHealthy() {
		if err := p.connect(); err != nil {
			log.ErrorLog.Printf("bloodbank: connect failed: %v", err)
			return
		}
	}

	envelope := NewEnvelope(eventType, time.Now().UTC(), payload, metadata)
	body, err := json.Marshal(envelope)
	if err != nil {
		log.ErrorLog.Printf("bloodbank: marshal event %s failed: %v", eventType, err)
		return
	}

	err = p.channel.PublishWithContext(ctx, p.cfg.Exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.ErrorLog.Printf("bloodbank: publish event %s failed: %v", eventType, err)
	}
}

// PublishIntentLogged emits perth.intent.logged, and additionally
// perth.milestone.recorded when isMilestone is true.
func (p *Publisher) PublishIntentLogged(ctx context.Context, payload interface{}, metadata Metadata, isMilestone bool) {
	p.Publish(ctx, EventIntentLogged, payload, metadata)
	if isMilestone {
		p.Publish(ctx, EventMilestoneRecorded, payload, metadata)
	}
}

// connect opens a connection, creates a channel, and declares the exchange
// durable. Caller must hold p.mu.
func (p *Publisher) connect() error {
	conn, err := dialFunc(p.cfg.AMQPURL)
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := channel.ExchangeDeclare(p.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	p.conn = conn
	p.channel = channel
	p.state = stateConnected
	return nil
}

func (p *Publisher) channelHealthy() bool {
	return p.channel != nil && !p.channel.IsClosed()
}

// Close releases the underlying channel and connection, if any.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
