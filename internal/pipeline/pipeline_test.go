package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/smartobjects/internal/config"
	"github.com/gyaneshwarpardhi/smartobjects/internal/sink"
)

// blockingSink holds every Publish until release is closed.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	mem     *sink.Memory
}

func newBlockingSink() *blockingSink {
	return &blockingSink{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
		mem:     sink.NewMemory(),
	}
}

func (b *blockingSink) Publish(ctx context.Context, msg sink.Message) error {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.mem.Publish(context.Background(), msg)
}

func (b *blockingSink) Close() error { return nil }

func testConf(workers, depth int) config.PipelineConf {
	return config.PipelineConf{Workers: workers, QueueDepth: depth, PublishTimeoutMs: 2000}
}

func TestPublishSync(t *testing.T) {
	mem := sink.NewMemory()
	p := New(context.Background(), mem, testConf(2, 4))
	defer p.Shutdown()

	msg := sink.Message{Topic: "events", Key: []byte("k"), Value: []byte(`{}`)}
	if err := p.PublishSync(context.Background(), msg); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	got := mem.Topic("events")
	if len(got) != 1 || string(got[0].Key) != "k" {
		t.Errorf("published = %+v", got)
	}
}

func TestPublishSyncSinkError(t *testing.T) {
	mem := sink.NewMemory()
	boom := errors.New("broker down")
	mem.FailWith(boom)
	p := New(context.Background(), mem, testConf(1, 1))
	defer p.Shutdown()

	err := p.PublishSync(context.Background(), sink.Message{Topic: "events"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestQueueFull(t *testing.T) {
	bs := newBlockingSink()
	p := New(context.Background(), bs, testConf(1, 1))

	if !p.PublishAsync(sink.Message{Topic: "a"}) {
		t.Fatal("first message rejected")
	}
	<-bs.entered // worker is now busy
	if !p.PublishAsync(sink.Message{Topic: "b"}) {
		t.Fatal("second message should fit in the queue")
	}
	if u := p.QueueUtilization(); u != 1 {
		t.Errorf("utilization = %v, want 1", u)
	}
	if p.PublishAsync(sink.Message{Topic: "c"}) {
		t.Error("third message should be rejected")
	}
	if err := p.PublishSync(context.Background(), sink.Message{Topic: "d"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(bs.release)
	p.Shutdown()
	if got := len(bs.mem.Messages()); got != 2 {
		t.Errorf("published %d messages after drain, want 2", got)
	}
	if p.PublishAsync(sink.Message{Topic: "late"}) {
		t.Error("submit after shutdown should be rejected")
	}
}

func TestPublishSyncContextCancelled(t *testing.T) {
	bs := newBlockingSink()
	p := New(context.Background(), bs, testConf(1, 1))
	defer func() {
		close(bs.release)
		p.Shutdown()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.PublishSync(ctx, sink.Message{Topic: "a"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPublishSyncTimeout(t *testing.T) {
	bs := newBlockingSink()
	conf := testConf(1, 1)
	conf.PublishTimeoutMs = 30
	p := New(context.Background(), bs, conf)
	defer func() {
		close(bs.release)
		p.Shutdown()
	}()

	err := p.PublishSync(context.Background(), sink.Message{Topic: "a"})
	if err == nil {
		t.Fatal("expected timeout")
	}
	// Either the waiter or the worker's publish deadline may fire first.
	if !errors.Is(err, ErrTimeout) && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("unexpected error %v", err)
	}
}
