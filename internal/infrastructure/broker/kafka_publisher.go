package broker

import (
	"context"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"github.com/invorya/almacen-api/internal/application/ports"
)

var _ ports.Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher implementación del puerto Publisher sobre Kafka. Un writer
// compartido resuelve el tópico por mensaje.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher construye el publicador contra los brokers dados.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
		},
	}
}

// Publish envía el payload al tópico. La clave fija la partición (hash),
// preservando el orden por par (producto, bodega).
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta los eventos. Se usa cuando no hay brokers configurados.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return nil
}
