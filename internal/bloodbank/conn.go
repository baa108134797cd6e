package bloodbank

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the narrow slice of *amqp.Channel the Publisher uses,
// mirroring internal/state's conn interface: a real AMQP channel satisfies
// it without any adapter code, and tests can supply a fake.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// amqpConnection is the narrow slice of *amqp.Connection the Publisher uses.
type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type goAMQPConnection struct {
	conn *amqp.Connection
}

func (c goAMQPConnection) Channel() (amqpChannel, error) {
	return c.conn.Channel()
}

func (c goAMQPConnection) Close() error {
	return c.conn.Close()
}

// dialFunc is overridden in tests to avoid needing a real broker.
var dialFunc = func(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return goAMQPConnection{conn: conn}, nil
}
