// internal/service/cart/infrastructure/adapter/events_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/cart/domain"
)

// ReservationEventsKafkaAdapter 实现 port.ReservationEventProducer，
// 把预订生命周期事件发到 Kafka。按 cartId 作 key，同一购物车分区有序。
type ReservationEventsKafkaAdapter struct {
	writer *kafka.Writer
}

func NewReservationEventsKafkaAdapter(writer *kafka.Writer) *ReservationEventsKafkaAdapter {
	return &ReservationEventsKafkaAdapter{writer: writer}
}

type eventEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (a *ReservationEventsKafkaAdapter) PublishPlaced(ctx context.Context, event *domain.ReservationPlaced) error {
	return a.publish(ctx, "reservation.placed", event.CartID, event)
}

func (a *ReservationEventsKafkaAdapter) PublishReleased(ctx context.Context, event *domain.ReservationReleased) error {
	return a.publish(ctx, "reservation.released", event.CartID, event)
}

func (a *ReservationEventsKafkaAdapter) PublishConflicted(ctx context.Context, event *domain.ReservationConflicted) error {
	return a.publish(ctx, "reservation.conflicted", event.CartID, event)
}

func (a *ReservationEventsKafkaAdapter) publish(ctx context.Context, eventType, key string, payload interface{}) error {
	raw, err := json.Marshal(eventEnvelope{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(key), raw)
}
