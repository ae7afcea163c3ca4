package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/smartobjects/internal/codec"
	"github.com/gyaneshwarpardhi/smartobjects/internal/ingest"
	"github.com/gyaneshwarpardhi/smartobjects/internal/metrics"
	"github.com/gyaneshwarpardhi/smartobjects/internal/pipeline"
)

const maxBodyBytes = 1 << 20

// Queue is the pipeline view used by readiness checks.
type Queue interface {
	QueueUtilization() float64
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	ing      *ingest.Ingestor
	queue    Queue
	maxBatch atomic.Int64
	next     http.Handler
}

// New creates an HTTP handler and registers all routes.
func New(ing *ingest.Ingestor, queue Queue, maxBatchSize int) *Handler {
	h := &Handler{ing: ing, queue: queue}
	h.maxBatch.Store(int64(maxBatchSize))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/owners", h.ingestOwner)
	mux.HandleFunc("POST /v1/events", h.ingestEvent)
	mux.HandleFunc("POST /v1/events/batch", h.ingestBatch)
	mux.HandleFunc("POST /v1/codec/validate", h.validate)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	h.next = loggingMiddleware(mux)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

// SetMaxBatchSize changes the batch limit (used on hot-reload).
func (h *Handler) SetMaxBatchSize(n int) {
	h.maxBatch.Store(int64(n))
}

// POST /v1/owners — synchronous owner ingestion.
func (h *Handler) ingestOwner(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rcpt, err := h.ing.Owner(r.Context(), body, "http")
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rcpt)
}

// POST /v1/events — synchronous single-event ingestion.
func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rcpt, err := h.ing.Event(r.Context(), body, "http")
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rcpt)
}

// POST /v1/events/batch — async batch ingestion.
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rcpt, err := h.ing.EventBatch(body, int(h.maxBatch.Load()), "http")
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rcpt)
}

// POST /v1/codec/validate?entity=owner|event — decode only, echo canonical form.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		entity = ingest.EntityEvent
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	out, err := h.ing.Validate(entity, body)
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, out)
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the publish queue is more than 80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.queue.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %s", err))
		return nil, false
	}
	return body, true
}

// writeIngestError maps ingestion failures to HTTP status codes. Codec errors
// are returned verbatim so clients can match on the message.
func writeIngestError(w http.ResponseWriter, err error) {
	var (
		verr *codec.ValidationError
		perr *codec.ParseError
		berr *ingest.BatchSizeError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &perr), errors.As(err, &berr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ingest.ErrUnknownEntity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, pipeline.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, codec.ErrReservedAttribute):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
