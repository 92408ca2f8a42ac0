package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

type ConfirmationPayload struct {
	LeadID string `json:"lead_id"`
}

type Producer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{Ch: ch}
}

// PublishInboundEvent drops a webhook event on the inbound queue so the
// HTTP handler can acknowledge immediately and the consumer can apply
// events in arrival order.
func (p *Producer) PublishInboundEvent(ctx context.Context, event usecase.InboundEvent) error {
	return p.publish(ctx, InboundKey, event)
}

func (p *Producer) PublishConfirmation(ctx context.Context, leadID string) error {
	return p.publish(ctx, ConfirmationKey, ConfirmationPayload{LeadID: leadID})
}

func (p *Producer) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", key, err)
	}
	return nil
}
