package otel

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware instruments the router with server spans and request
// metrics. Route patterns become span names via the operation label.
func HTTPMiddleware(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "agentrelay.http")
}
