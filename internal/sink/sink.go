// Package sink delivers serialized records to downstream consumers.
package sink

import (
	"context"
	"sync"
	"time"
)

// Message is a serialized record addressed to a topic.
type Message struct {
	Topic      string
	Key        []byte
	Value      []byte
	ReceivedAt time.Time
}

// Sink publishes messages. Implementations must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Memory keeps published messages in process. It backs development mode
// (no brokers configured) and tests.
type Memory struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *Memory) Close() error { return nil }

// FailWith makes subsequent Publish calls return err. Pass nil to recover.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Messages returns a snapshot of everything published so far.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.msgs))
	copy(out, m.msgs)
	return out
}

// Topic returns the messages published to topic, in publish order.
func (m *Memory) Topic(topic string) []Message {
	var out []Message
	for _, msg := range m.Messages() {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
