package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// recordingHandler collects slog.Records for test assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
	attrs   []slog.Attr
	delay   time.Duration // optional per-record processing delay
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	h.attrs = append(h.attrs, attrs...)
	h.mu.Unlock()
	return h
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func TestAsyncHandlerFlushesOnClose(t *testing.T) {
	inner := &recordingHandler{}
	ah := NewAsyncHandler(inner, 100)

	for i := 0; i < 5; i++ {
		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
		if err := ah.Handle(context.Background(), rec); err != nil {
			t.Fatalf("Handle returned error: %v", err)
		}
	}
	ah.Close()

	if got := inner.count(); got != 5 {
		t.Fatalf("expected 5 records after Close, got %d", got)
	}
}

func TestAsyncHandlerConcurrentWrites(t *testing.T) {
	const goroutines = 50
	const perGoroutine = 20
	total := goroutines * perGoroutine

	inner := &recordingHandler{}
	ah := NewAsyncHandler(inner, total)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				rec := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
				_ = ah.Handle(context.Background(), rec)
			}
		}()
	}
	wg.Wait()
	ah.Close()

	if got := inner.count(); got != total {
		t.Fatalf("expected %d records, got %d (dropped %d)", total, got, ah.DroppedCount())
	}
}

func TestAsyncHandlerDropsWhenFull(t *testing.T) {
	inner := &recordingHandler{delay: 50 * time.Millisecond}
	ah := NewAsyncHandler(inner, 1)

	for i := 0; i < 20; i++ {
		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
		_ = ah.Handle(context.Background(), rec)
	}

	if ah.DroppedCount() == 0 {
		t.Error("expected some records to be dropped with a full buffer")
	}
	ah.Close()
}

func TestAsyncHandlerKeepsDerivedAttrs(t *testing.T) {
	inner := &recordingHandler{}
	ah := NewAsyncHandler(inner, 10)

	derived := ah.WithAttrs([]slog.Attr{slog.String("component", "cost")})
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	_ = derived.Handle(context.Background(), rec)
	ah.Close()

	if got := inner.count(); got != 1 {
		t.Fatalf("expected record from derived handler, got %d", got)
	}
	if len(inner.attrs) != 1 || inner.attrs[0].Key != "component" {
		t.Fatalf("expected derived attrs to reach the inner handler, got %v", inner.attrs)
	}
}
