package observe

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"strings"

	"github.com/trdlnk/fulfillmentlocation/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPTransport wraps an outbound transport with client spans and metrics
// when telemetry and HTTP transport instrumentation are both enabled.
// Otherwise wrapped is returned unchanged.
func HTTPTransport(wrapped http.RoundTripper, cfg config.ObserveConfig) http.RoundTripper {
	if !cfg.Enabled || !cfg.HTTPTransportEnabled {
		return wrapped
	}

	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + RouteTemplate(r.URL.Path)
		}),
	}

	if cfg.HTTPConnectionTraceEnabled {
		opts = append(opts, otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx, otelhttptrace.WithoutSubSpans())
		}))
	}

	return otelhttp.NewTransport(wrapped, opts...)
}

const locationsRoute = "/v1/fulfillmentlocations"

// RouteTemplate replaces the location identifier in a request path with a
// placeholder, keeping span names low cardinality.
func RouteTemplate(path string) string {
	rest, ok := strings.CutPrefix(path, locationsRoute+"/")
	if !ok || rest == "" {
		return path
	}

	if _, tail, nested := strings.Cut(rest, "/"); nested {
		return locationsRoute + "/{id}/" + tail
	}
	return locationsRoute + "/{id}"
}
