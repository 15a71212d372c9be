package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

// nopCloser is a no-op Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// entry pairs a record with the handler it was enqueued through, so
// attribute and group wrapping applied after construction still takes
// effect when the record is written.
type entry struct {
	h   slog.Handler
	rec slog.Record
}

// asyncCore is the buffer shared by an AsyncHandler and its derived
// WithAttrs/WithGroup handlers.
type asyncCore struct {
	ch      chan entry
	done    chan struct{}
	dropped atomic.Int64
}

func (c *asyncCore) drain() {
	defer close(c.done)
	for e := range c.ch {
		_ = e.h.Handle(context.Background(), e.rec)
	}
}

// AsyncHandler decouples log emission from the writer behind it: Handle
// enqueues onto a bounded buffer and a single goroutine drains it. When
// the buffer is full the record is dropped rather than blocking the caller.
type AsyncHandler struct {
	inner slog.Handler
	core  *asyncCore
}

// NewAsyncHandler wraps inner with a buffer of the given capacity and
// starts the drain goroutine.
func NewAsyncHandler(inner slog.Handler, buffer int) *AsyncHandler {
	core := &asyncCore{
		ch:   make(chan entry, buffer),
		done: make(chan struct{}),
	}
	go core.drain()
	return &AsyncHandler{inner: inner, core: core}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it when the buffer is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.core.ch <- entry{h: h.inner, rec: rec}:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs wraps the inner handler; the buffer is shared.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), core: h.core}
}

// WithGroup wraps the inner handler; the buffer is shared.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), core: h.core}
}

// DroppedCount returns how many records were discarded on a full buffer.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.core.dropped.Load()
}

// Close stops accepting records and blocks until the buffer is drained.
func (h *AsyncHandler) Close() {
	close(h.core.ch)
	<-h.core.done
}
