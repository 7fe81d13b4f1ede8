package broker

import (
	"context"
	"fmt"

	"pos-service/internal/models"
)

// EventPublisher handles publishing domain events. A nil publisher is valid
// and drops everything, so callers don't have to branch on whether Kafka is
// configured.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSaleCommitted publishes a SaleCommitted event
func (ep *EventPublisher) PublishSaleCommitted(ctx context.Context, event *models.SaleCommittedEvent) error {
	if ep == nil || ep.producer == nil {
		return nil
	}
	key := fmt.Sprintf("sale-%s", event.SaleID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishLowStock publishes a LowStock event
func (ep *EventPublisher) PublishLowStock(ctx context.Context, event *models.LowStockEvent) error {
	if ep == nil || ep.producer == nil {
		return nil
	}
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}
