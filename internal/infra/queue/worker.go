package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

// Worker consumes the inbound event and confirmation queues. The inbound
// consumer runs with prefetch 1 and manual acks: one event at a time, in
// arrival order, which is what keeps a stale bounce from reverting a
// later DO_NOT_CONTACT.
type Worker struct {
	Channel *amqp.Channel
	Inbound *usecase.ProcessInboundUseCase
	Contact *usecase.ContactLeadUseCase
}

func NewWorker(ch *amqp.Channel, inbound *usecase.ProcessInboundUseCase, contact *usecase.ContactLeadUseCase) *Worker {
	return &Worker{Channel: ch, Inbound: inbound, Contact: contact}
}

func (w *Worker) StartInbound(ctx context.Context) {
	if err := w.Channel.Qos(1, 0, false); err != nil {
		log.Fatalf("[worker] failed to set prefetch: %s", err)
	}

	msgs, err := w.Channel.Consume(InboundQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("[worker] failed to register inbound consumer: %s", err)
	}

	log.Printf("[worker] consuming '%s'", InboundQueue)

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			w.handleInbound(ctx, d)
		}
	}
}

func (w *Worker) handleInbound(ctx context.Context, d amqp.Delivery) {
	var event usecase.InboundEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("[worker] bad inbound JSON, dead-lettering: %s", err)
		d.Nack(false, false)
		return
	}

	outcome, err := w.Inbound.Execute(ctx, event)
	if err != nil {
		log.Printf("[worker] inbound event %s failed: %s", event.EventID, err)
		d.Nack(false, false)
		return
	}

	switch {
	case outcome.Orphan:
		log.Printf("[worker] orphan event %s acked", event.EventID)
	case outcome.Duplicate:
		log.Printf("[worker] duplicate event %s acked", event.EventID)
	default:
		log.Printf("[worker] event %s (%s) -> %s", event.EventID, event.EventType, outcome.NewStatus)
	}
	d.Ack(false)
}

func (w *Worker) StartConfirmations(ctx context.Context) {
	msgs, err := w.Channel.Consume(ConfirmationQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("[worker] failed to register confirmation consumer: %s", err)
	}

	log.Printf("[worker] consuming '%s'", ConfirmationQueue)

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			var payload ConfirmationPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[worker] bad confirmation JSON: %s", err)
				d.Nack(false, false)
				continue
			}
			if err := w.Contact.SendOptOutConfirmation(ctx, payload.LeadID); err != nil {
				log.Printf("[worker] opt-out confirmation for %s failed: %s", payload.LeadID, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}
