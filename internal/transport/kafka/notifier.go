package kafka

import (
	"context"
	"strconv"

	"dispatch-service/internal/domain"
)

// Notifier publishes courier notifications and assignment events to Kafka.
// It implements dispatch.Notifier and dispatch.EventSink.
type Notifier struct {
	producer           *Producer
	notificationsTopic string
	eventsTopic        string
}

// NewNotifier creates a Notifier. Returns nil when the producer is nil so
// the dispatch service can run without a notification channel.
func NewNotifier(p *Producer, notificationsTopic, eventsTopic string) *Notifier {
	if p == nil {
		return nil
	}
	return &Notifier{
		producer:           p,
		notificationsTopic: notificationsTopic,
		eventsTopic:        eventsTopic,
	}
}

// NotifyAssignment pushes a new-assignment message keyed by courier so each
// courier's notifications stay ordered.
func (n *Notifier) NotifyAssignment(_ context.Context, msg domain.CourierNotification) error {
	return n.producer.PublishJSON(n.notificationsTopic, strconv.FormatInt(msg.CourierID, 10), msg)
}

// Publish relays an assignment domain event keyed by order.
func (n *Notifier) Publish(_ context.Context, ev domain.AssignmentEvent) error {
	return n.producer.PublishJSON(n.eventsTopic, ev.Assignment.OrderID, ev)
}
