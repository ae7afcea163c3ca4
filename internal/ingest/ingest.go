// Package ingest turns raw wire payloads into canonical records and hands
// them to the publish pipeline. Rejected payloads are copied to the
// dead-letter topic.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/smartobjects/internal/codec"
	"github.com/gyaneshwarpardhi/smartobjects/internal/config"
	"github.com/gyaneshwarpardhi/smartobjects/internal/metrics"
	"github.com/gyaneshwarpardhi/smartobjects/internal/model"
	"github.com/gyaneshwarpardhi/smartobjects/internal/pipeline"
	"github.com/gyaneshwarpardhi/smartobjects/internal/sink"
)

// Entity names accepted by Validate. They also label metrics and dead
// letters.
var (
	EntityOwner = codec.Owners.Name()
	EntityEvent = codec.Events.Name()
)

// ErrUnknownEntity is returned by Validate for an unsupported entity name.
var ErrUnknownEntity = errors.New("unknown entity")

// Publisher is the subset of the pipeline used by the Ingestor.
type Publisher interface {
	PublishSync(ctx context.Context, msg sink.Message) error
	PublishAsync(msg sink.Message) bool
}

var _ Publisher = (*pipeline.Pipeline)(nil)

// Receipt identifies a record accepted for publishing.
type Receipt struct {
	Topic string `json:"topic"`
	Key   string `json:"key"`
}

// BatchReceipt summarises an asynchronous batch submission.
type BatchReceipt struct {
	JobID    string   `json:"job_id"`
	Total    int      `json:"total"`
	Queued   int      `json:"queued"`
	Rejected int      `json:"rejected"`
	Keys     []string `json:"keys"`
}

// BatchSizeError reports a batch that is empty or larger than allowed.
type BatchSizeError struct {
	Size, Max int
}

func (e *BatchSizeError) Error() string {
	if e.Size == 0 {
		return "batch must contain at least one event"
	}
	return fmt.Sprintf("batch size %d exceeds max %d", e.Size, e.Max)
}

// Ingestor decodes, normalizes and publishes owners and events.
type Ingestor struct {
	pub    Publisher
	topics config.KafkaConf
	now    func() time.Time
}

func New(pub Publisher, topics config.KafkaConf) *Ingestor {
	return &Ingestor{pub: pub, topics: topics, now: time.Now}
}

// Owner decodes an owner payload and publishes its canonical form,
// waiting for the sink.
func (i *Ingestor) Owner(ctx context.Context, raw []byte, source string) (Receipt, error) {
	receivedAt := i.now()
	owner, err := codec.DeserializeOwner(raw)
	if err != nil {
		i.reject(EntityOwner, source, raw, err, receivedAt)
		return Receipt{}, err
	}
	metrics.RecordsDecoded.WithLabelValues(EntityOwner).Inc()

	out, err := codec.SerializeOwner(owner)
	if err != nil {
		return Receipt{}, err
	}
	key := ownerKey(owner)
	msg := sink.Message{Topic: i.topics.OwnerTopic, Key: []byte(key), Value: out, ReceivedAt: receivedAt}
	if err := i.pub.PublishSync(ctx, msg); err != nil {
		return Receipt{}, err
	}
	return Receipt{Topic: msg.Topic, Key: key}, nil
}

// Event decodes an event payload, assigns an id when missing and publishes
// it, waiting for the sink.
func (i *Ingestor) Event(ctx context.Context, raw []byte, source string) (Receipt, error) {
	msg, err := i.eventMessage(raw, source)
	if err != nil {
		return Receipt{}, err
	}
	if err := i.pub.PublishSync(ctx, msg); err != nil {
		return Receipt{}, err
	}
	return Receipt{Topic: msg.Topic, Key: string(msg.Key)}, nil
}

// EventAsync is Event without waiting for delivery. It returns
// pipeline.ErrQueueFull when the record could not be queued.
func (i *Ingestor) EventAsync(raw []byte, source string) (Receipt, error) {
	msg, err := i.eventMessage(raw, source)
	if err != nil {
		return Receipt{}, err
	}
	if !i.pub.PublishAsync(msg) {
		return Receipt{}, pipeline.ErrQueueFull
	}
	return Receipt{Topic: msg.Topic, Key: string(msg.Key)}, nil
}

// EventBatch decodes a JSON array of events and queues each one. The whole
// batch is rejected if any element fails to decode.
func (i *Ingestor) EventBatch(raw []byte, maxSize int, source string) (BatchReceipt, error) {
	receivedAt := i.now()
	events, err := codec.Events.DeserializeBatch(raw)
	if err != nil {
		i.reject(EntityEvent, source, raw, err, receivedAt)
		return BatchReceipt{}, err
	}
	if len(events) == 0 || len(events) > maxSize {
		return BatchReceipt{}, &BatchSizeError{Size: len(events), Max: maxSize}
	}
	metrics.RecordsDecoded.WithLabelValues(EntityEvent).Add(float64(len(events)))

	rcpt := BatchReceipt{JobID: uuid.NewString(), Total: len(events), Keys: make([]string, 0, len(events))}
	for _, ev := range events {
		msg, err := i.eventRecord(ev, receivedAt)
		if err != nil {
			return BatchReceipt{}, err
		}
		if i.pub.PublishAsync(msg) {
			rcpt.Queued++
			rcpt.Keys = append(rcpt.Keys, string(msg.Key))
		}
	}
	rcpt.Rejected = rcpt.Total - rcpt.Queued
	return rcpt, nil
}

// Validate decodes raw as the named entity and returns its canonical
// serialization without publishing anything.
func (i *Ingestor) Validate(entity string, raw []byte) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch entity {
	case EntityOwner:
		var o *model.Owner
		if o, err = codec.DeserializeOwner(raw); err == nil {
			out, err = codec.SerializeOwner(o)
		}
	case EntityEvent:
		var e *model.Event
		if e, err = codec.DeserializeEvent(raw); err == nil {
			out, err = codec.SerializeEvent(e)
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEntity, entity)
	}
	if err != nil {
		metrics.DecodeFailures.WithLabelValues(entity, FailureReason(err)).Inc()
		return nil, err
	}
	return out, nil
}

func (i *Ingestor) eventMessage(raw []byte, source string) (sink.Message, error) {
	receivedAt := i.now()
	ev, err := codec.DeserializeEvent(raw)
	if err != nil {
		i.reject(EntityEvent, source, raw, err, receivedAt)
		return sink.Message{}, err
	}
	metrics.RecordsDecoded.WithLabelValues(EntityEvent).Inc()
	return i.eventRecord(ev, receivedAt)
}

func (i *Ingestor) eventRecord(ev *model.Event, receivedAt time.Time) (sink.Message, error) {
	id, ok := ev.EventID()
	if !ok {
		id = uuid.New()
		ev = ev.ToBuilder().EventID(id).Build()
	}
	out, err := codec.SerializeEvent(ev)
	if err != nil {
		return sink.Message{}, err
	}
	return sink.Message{Topic: i.topics.EventTopic, Key: []byte(id.String()), Value: out, ReceivedAt: receivedAt}, nil
}

func (i *Ingestor) reject(entity, source string, raw []byte, cause error, receivedAt time.Time) {
	metrics.DecodeFailures.WithLabelValues(entity, FailureReason(cause)).Inc()
	dl, err := sink.DeadLetter(i.topics.DLQTopic, source, raw, cause, receivedAt)
	if err != nil {
		slog.Error("build dead letter", "entity", entity, "err", err)
		return
	}
	if !i.pub.PublishAsync(dl) {
		slog.Warn("dead letter dropped: queue full", "entity", entity, "source", source)
	}
}

// FailureReason classifies a decode error as "validation" or "parse".
func FailureReason(err error) string {
	var verr *codec.ValidationError
	if errors.As(err, &verr) {
		return "validation"
	}
	return "parse"
}

func ownerKey(o *model.Owner) string {
	if v, ok := o.Username(); ok && v != "" {
		return v
	}
	if id, ok := o.EventID(); ok {
		return id.String()
	}
	return "anonymous"
}
