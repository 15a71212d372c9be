package logger

import (
	"context"
	"testing"

	"github.com/perchlabs/perch/internal/config"
)

func TestNewReturnsNopCloserWhenSync(t *testing.T) {
	l, closer := New(config.Logging{Level: "info", Service: "perch-test"})
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if _, ok := closer.(nopCloser); !ok {
		t.Fatalf("expected nopCloser in sync mode, got %T", closer)
	}
	closer.Close()
}

func TestNewReturnsAsyncCloserWhenAsync(t *testing.T) {
	l, closer := New(config.Logging{Level: "info", Service: "perch-test", Async: true})
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if _, ok := closer.(*AsyncHandler); !ok {
		t.Fatalf("expected *AsyncHandler closer in async mode, got %T", closer)
	}
	closer.Close()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
		"":        "INFO",
	}

	for input, want := range cases {
		if got := parseLevel(input).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID on bare context, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}
