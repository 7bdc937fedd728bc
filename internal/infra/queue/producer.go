package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadhub/internal/entity"
)

// Metrics é implementado pelo middleware de métricas.
type Metrics interface {
	RecordEventPublished(eventType string, err error)
	RecordIntegrationError(service string)
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch      publisher
	Metrics Metrics
}

func NewProducer(ch publisher, metrics Metrics) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch, Metrics: metrics}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	err := p.publish(ctx, event)
	if p.Metrics != nil {
		p.Metrics.RecordEventPublished(event.Type, err)
	}
	return err
}

func (p *RabbitMQProducer) publish(ctx context.Context, event entity.LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
