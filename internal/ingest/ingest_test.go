package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/smartobjects/internal/codec"
	"github.com/gyaneshwarpardhi/smartobjects/internal/config"
	"github.com/gyaneshwarpardhi/smartobjects/internal/pipeline"
	"github.com/gyaneshwarpardhi/smartobjects/internal/sink"
)

type fakePublisher struct {
	mu       sync.Mutex
	sync     []sink.Message
	async    []sink.Message
	syncErr  error
	capacity int // async slots; <0 means unlimited
}

func (f *fakePublisher) PublishSync(_ context.Context, msg sink.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncErr != nil {
		return f.syncErr
	}
	f.sync = append(f.sync, msg)
	return nil
}

func (f *fakePublisher) PublishAsync(msg sink.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.capacity >= 0 && len(f.async) >= f.capacity {
		return false
	}
	f.async = append(f.async, msg)
	return true
}

var topics = config.KafkaConf{OwnerTopic: "owners", EventTopic: "events", DLQTopic: "dlq"}

func newTestIngestor(pub *fakePublisher) *Ingestor {
	i := New(pub, topics)
	i.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return i
}

func TestOwnerPublishesCanonicalForm(t *testing.T) {
	pub := &fakePublisher{capacity: -1}
	i := newTestIngestor(pub)

	rcpt, err := i.Owner(context.Background(), []byte(`{ "weight": 10.0, "username": "alice" }`), "http")
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if rcpt.Topic != "owners" || rcpt.Key != "alice" {
		t.Errorf("receipt = %+v", rcpt)
	}
	if len(pub.sync) != 1 {
		t.Fatalf("sync publishes = %d", len(pub.sync))
	}
	if got := string(pub.sync[0].Value); got != `{"username":"alice","weight":10.0}` {
		t.Errorf("value = %s", got)
	}
}

func TestOwnerRejectedGoesToDLQ(t *testing.T) {
	pub := &fakePublisher{capacity: -1}
	i := newTestIngestor(pub)

	_, err := i.Owner(context.Background(), []byte(`{"x_password":9898.3}`), "http")
	if err == nil || err.Error() != "Field 'x_password' does not match TYPE 'TEXT'" {
		t.Fatalf("unexpected error %v", err)
	}
	if len(pub.sync) != 0 {
		t.Error("rejected owner must not be published")
	}
	if len(pub.async) != 1 || pub.async[0].Topic != "dlq" {
		t.Fatalf("dead letters = %+v", pub.async)
	}
	if !strings.Contains(string(pub.async[0].Value), `"source":"http"`) {
		t.Errorf("dead letter = %s", pub.async[0].Value)
	}
}

func TestEventAssignsMissingID(t *testing.T) {
	pub := &fakePublisher{capacity: -1}
	i := newTestIngestor(pub)

	rcpt, err := i.Event(context.Background(), []byte(`{"x_event_type":"reading","v":1}`), "http")
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	id, err := uuid.Parse(rcpt.Key)
	if err != nil {
		t.Fatalf("key %q is not a uuid", rcpt.Key)
	}
	ev, err := codec.DeserializeEvent(pub.sync[0].Value)
	if err != nil {
		t.Fatalf("published value does not decode: %v", err)
	}
	if got, _ := ev.EventID(); got != id {
		t.Errorf("event id = %s, want %s", got, id)
	}
	if !pub.sync[0].ReceivedAt.Equal(i.now()) {
		t.Errorf("received at = %v", pub.sync[0].ReceivedAt)
	}
}

func TestEventKeepsExistingID(t *testing.T) {
	pub := &fakePublisher{capacity: -1}
	i := newTestIngestor(pub)

	const id = "9ab392d8-a865-48da-9035-0dc0a728b454"
	rcpt, err := i.EventAsync([]byte(`{"event_id":"`+id+`"}`), "mqtt")
	if err != nil {
		t.Fatalf("EventAsync: %v", err)
	}
	if rcpt.Key != id || len(pub.async) != 1 {
		t.Errorf("receipt = %+v, async = %d", rcpt, len(pub.async))
	}
}

func TestEventAsyncQueueFull(t *testing.T) {
	pub := &fakePublisher{capacity: 0}
	i := newTestIngestor(pub)
	if _, err := i.EventAsync([]byte(`{}`), "mqtt"); !errors.Is(err, pipeline.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestEventSyncPublishError(t *testing.T) {
	boom := errors.New("broker down")
	pub := &fakePublisher{capacity: -1, syncErr: boom}
	i := newTestIngestor(pub)
	if _, err := i.Event(context.Background(), []byte(`{}`), "http"); !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestEventBatch(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		max        int
		capacity   int
		wantQueued int
		wantErr    string
	}{
		{name: "all queued", body: `[{},{"x_event_type":"a"}]`, max: 10, capacity: -1, wantQueued: 2},
		{name: "partially queued", body: `[{},{},{}]`, max: 10, capacity: 1, wantQueued: 1},
		{name: "too large", body: `[{},{},{}]`, max: 2, capacity: -1, wantErr: "batch size 3 exceeds max 2"},
		{name: "empty", body: `[]`, max: 2, capacity: -1, wantErr: "batch must contain at least one event"},
		{name: "bad element", body: `[{},{"x_timestamp":"nope"}]`, max: 10, capacity: -1,
			wantErr: "events[1]: Field 'x_timestamp' does not match TYPE 'DATETIME'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{capacity: tc.capacity}
			i := newTestIngestor(pub)
			rcpt, err := i.EventBatch([]byte(tc.body), tc.max, "http")
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EventBatch: %v", err)
			}
			if rcpt.Queued != tc.wantQueued || rcpt.Rejected != rcpt.Total-tc.wantQueued || len(rcpt.Keys) != tc.wantQueued {
				t.Errorf("receipt = %+v", rcpt)
			}
			if rcpt.JobID == "" {
				t.Error("job id missing")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	i := newTestIngestor(&fakePublisher{capacity: -1})

	out, err := i.Validate(EntityEvent, []byte(`{"x_device_id":"d1","n":2.50}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if string(out) != `{"x_device_id":"d1","n":2.5}` {
		t.Errorf("canonical = %s", out)
	}

	if _, err := i.Validate(EntityOwner, []byte(`{"username":false}`)); FailureReason(err) != "validation" {
		t.Errorf("expected validation failure, got %v", err)
	}
	if _, err := i.Validate(EntityOwner, []byte(`{`)); FailureReason(err) != "parse" {
		t.Errorf("expected parse failure, got %v", err)
	}
	if _, err := i.Validate("object", []byte(`{}`)); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
}
