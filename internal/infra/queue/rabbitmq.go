package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.agent"
	DLXName      = "ex.dlx"

	InboundQueue = "q.inbound-events"
	InboundDLQ   = "q.inbound-events.dlq"
	InboundKey   = "k.inbound"

	ConfirmationQueue = "q.optout-confirmations"
	ConfirmationKey   = "k.confirmation"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel failed: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(InboundDLQ, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(InboundDLQ, InboundKey, DLXName, false, nil); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	// Poisoned or repeatedly failing inbound events end up in the DLQ
	// instead of blocking the per-lead ordering guarantee.
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": InboundKey,
	}
	if _, err := ch.QueueDeclare(InboundQueue, true, false, false, false, args); err != nil {
		return err
	}
	if err := ch.QueueBind(InboundQueue, InboundKey, ExchangeName, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(ConfirmationQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(ConfirmationQueue, ConfirmationKey, ExchangeName, false, nil); err != nil {
		return err
	}

	return nil
}
