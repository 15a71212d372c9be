package otel

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware traces every request except health probes, which would
// otherwise dominate the span volume.
func HTTPMiddleware(serviceName string) func(http.Handler) http.Handler {
	skipHealth := otelhttp.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/api/health"
	})
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName, skipHealth)
	}
}
