package sink

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka publishes records with a single writer; the topic is chosen per
// message so owners, events and dead letters share one connection pool.
type Kafka struct {
	w *kafka.Writer
}

// NewKafka creates a writer for the given brokers. Writes are synchronous so
// that the pipeline can report delivery failures to HTTP callers.
func NewKafka(brokers []string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},

		BatchSize:    100,
		BatchBytes:   1 << 20,
		BatchTimeout: 5 * time.Millisecond,

		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) Publish(ctx context.Context, msg Message) error {
	return k.w.WriteMessages(ctx, toKafka(msg))
}

func (k *Kafka) Close() error { return k.w.Close() }

func toKafka(msg Message) kafka.Message {
	km := kafka.Message{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
	}
	if !msg.ReceivedAt.IsZero() {
		km.Headers = []kafka.Header{{
			Key:   "receivedAt",
			Value: []byte(msg.ReceivedAt.UTC().Format(time.RFC3339Nano)),
		}}
	}
	return km
}
