package events

import (
	"context"
	"errors"

	"k9harmony/pkg/config"
	"k9harmony/pkg/kafka"
	kafka_config "k9harmony/pkg/kafka/config"
	kafka_middleware "k9harmony/pkg/kafka/middleware"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"
)

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	events         messagePublisher
	reconciliation messagePublisher
}

// NewKafkaPublisher writes lifecycle events to EventsTopic and reconciliation alerts to ReconciliationTopic.
func NewKafkaPublisher(cfg *config.Config, kcfg *kafka_config.Config, log *logger.Logger) (*KafkaPublisher, error) {
	eventsProducer, err := kafka.NewProducer(kcfg, cfg.EventsTopic, cfg.EventsDLQTopic, log)
	if err != nil {
		return nil, err
	}
	// Reconciliation alerts have no DLQ; the local journal already holds them.
	reconProducer, err := kafka.NewProducer(kcfg, cfg.ReconciliationTopic, "", log)
	if err != nil {
		_ = eventsProducer.Close()
		return nil, err
	}

	eventsProducer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	reconProducer.Use(kafka_middleware.LoggingProducerMiddleware(log))

	return &KafkaPublisher{events: eventsProducer, reconciliation: reconProducer}, nil
}

func (p *KafkaPublisher) ReservationConfirmed(ctx context.Context, r *model.Reservation) error {
	return p.publish(ctx, p.events, TypeReservationConfirmed, r.ID, newReservationEvent(r))
}

func (p *KafkaPublisher) ReservationCancelled(ctx context.Context, r *model.Reservation, actorType model.ActorType, actorID, reason string) error {
	event := newReservationEvent(r)
	event.ActorType = actorType
	event.ActorID = actorID
	event.Reason = reason
	return p.publish(ctx, p.events, TypeReservationCancelled, r.ID, event)
}

func (p *KafkaPublisher) CompensationFailed(ctx context.Context, rec *model.ReconciliationRecord) error {
	return p.publish(ctx, p.reconciliation, TypeCompensationFailed, rec.TransactionID, rec)
}

func (p *KafkaPublisher) publish(ctx context.Context, to messagePublisher, eventType, key string, payload any) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(key).
		WithValue(payload).
		Build()
	if err != nil {
		return err
	}
	return to.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return errors.Join(p.events.Close(), p.reconciliation.Close())
}
