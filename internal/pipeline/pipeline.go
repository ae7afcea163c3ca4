// Package pipeline publishes serialized records to a sink through a bounded
// worker pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gyaneshwarpardhi/smartobjects/internal/config"
	"github.com/gyaneshwarpardhi/smartobjects/internal/metrics"
	"github.com/gyaneshwarpardhi/smartobjects/internal/sink"
)

// ErrQueueFull is returned when the publish queue cannot accept more work.
var ErrQueueFull = errors.New("publish queue full")

// ErrTimeout is returned when a synchronous publish does not complete in time.
var ErrTimeout = errors.New("publish timeout")

// Pipeline hands records to the sink from a fixed set of workers.
type Pipeline struct {
	sink sink.Sink
	pool *workerPool[*work]
	conf config.PipelineConf
}

type work struct {
	msg     sink.Message
	resultC chan error // nil for fire-and-forget
}

// New creates a Pipeline using conf and starts its workers. Workers stop when
// ctx is cancelled or after Shutdown drains the queue.
func New(ctx context.Context, s sink.Sink, conf config.PipelineConf) *Pipeline {
	p := &Pipeline{sink: s, conf: conf}
	p.pool = newWorkerPool[*work](ctx, conf.Workers, conf.QueueDepth, func(ctx context.Context, w *work) {
		err := p.publish(ctx, w.msg)
		if w.resultC != nil {
			w.resultC <- err
		} else if err != nil {
			slog.Error("async publish failed", "topic", w.msg.Topic, "key", string(w.msg.Key), "err", err)
		}
	})
	return p
}

// PublishSync enqueues msg and waits for the sink to accept it.
func (p *Pipeline) PublishSync(ctx context.Context, msg sink.Message) error {
	resultC := make(chan error, 1)
	if !p.pool.Submit(&work{msg: msg, resultC: resultC}) {
		metrics.RecordsDropped.Inc()
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, p.conf.QueueDepth)
	}
	metrics.RecordsEnqueued.Inc()

	timeout := p.timeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-resultC:
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAsync enqueues msg for background delivery. Returns false if the queue is full.
func (p *Pipeline) PublishAsync(msg sink.Message) bool {
	if !p.pool.Submit(&work{msg: msg}) {
		metrics.RecordsDropped.Inc()
		return false
	}
	metrics.RecordsEnqueued.Inc()
	return true
}

// QueueUtilization returns queue used / capacity (0–1).
func (p *Pipeline) QueueUtilization() float64 {
	if p.pool.QueueCap() == 0 {
		return 0
	}
	return float64(p.pool.QueueLen()) / float64(p.pool.QueueCap())
}

// Shutdown stops accepting work and waits for queued records to be published.
func (p *Pipeline) Shutdown() {
	p.pool.Drain()
}

func (p *Pipeline) publish(ctx context.Context, msg sink.Message) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	err := p.sink.Publish(ctx, msg)
	metrics.PublishDuration.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.PublishFailures.WithLabelValues(msg.Topic).Inc()
		return fmt.Errorf("publish to %s: %w", msg.Topic, err)
	}
	metrics.RecordsPublished.WithLabelValues(msg.Topic).Inc()
	return nil
}

func (p *Pipeline) timeout() time.Duration {
	return time.Duration(p.conf.PublishTimeoutMs) * time.Millisecond
}
