package fulfillmentlocation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/trdlnk/fulfillmentlocation/internal/credential"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const locationsPath = "/v1/fulfillmentlocations"

var (
	emptyLocation  = json.RawMessage(`{}`)
	emptyLocations = json.RawMessage(`[]`)
)

// RequestSummary is the detail passed to Logger.Info before a request is
// issued. It never contains the authorization value itself.
type RequestSummary struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Query      map[string]string `json:"query,omitempty"`
	Fresh      bool              `json:"fresh"`
	Credential string            `json:"credential"`
}

// listQuery holds the list endpoint filters.
type listQuery struct {
	showArchived bool
	fulfillerID  string
}

func (q listQuery) values() url.Values {
	v := url.Values{}
	v.Set("showArchived", strconv.FormatBool(q.showArchived))
	if q.fulfillerID != "" {
		v.Set("fulfillerId", q.fulfillerID)
	}
	return v
}

// fetcher issues exactly one request to the service per call and maps the
// response onto the client's error classification.
type fetcher struct {
	baseURL string
	client  *http.Client
	log     Logger
	tracer  trace.Tracer
}

func (f *fetcher) location(ctx context.Context, authorization, id string, fresh bool) (json.RawMessage, error) {
	endpoint := f.baseURL + locationsPath + "/" + url.PathEscape(id)
	return f.get(ctx, "location", endpoint, nil, authorization, fresh, emptyLocation)
}

func (f *fetcher) locations(ctx context.Context, authorization string, q listQuery, fresh bool) (json.RawMessage, error) {
	endpoint := f.baseURL + locationsPath
	return f.get(ctx, "locations", endpoint, q.values(), authorization, fresh, emptyLocations)
}

func (f *fetcher) get(
	ctx context.Context,
	kind string,
	endpoint string,
	query url.Values,
	authorization string,
	fresh bool,
	empty json.RawMessage,
) (json.RawMessage, error) {
	ctx, span := f.tracer.Start(ctx, "fulfillmentlocation.fetch."+kind, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("fulfillmentlocation.endpoint", kind),
		attribute.Bool("fulfillmentlocation.fresh", fresh),
	)

	payload, err := f.do(ctx, endpoint, query, authorization, fresh, empty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		f.log.Error("<-"+endpoint, err)
		return nil, err
	}

	f.log.Info("<-"+endpoint, payload)
	return payload, nil
}

func (f *fetcher) do(
	ctx context.Context,
	endpoint string,
	query url.Values,
	authorization string,
	fresh bool,
	empty json.RawMessage,
) (json.RawMessage, error) {
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authorization)
	if fresh {
		// defeats intermediary HTTP caches between the client and the service
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("X-Cache-Id", uuid.NewString())
	}

	f.log.Info("->"+endpoint, summarize(req, query, authorization, fresh))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := statusError(resp, body); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return empty, nil
	}

	return json.RawMessage(trimmed), nil
}

func statusError(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusNotFound:
		kind = ErrNotFound
	default:
		return &TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	return &Error{
		Status:         resp.StatusCode,
		Message:        resp.Status,
		AdditionalData: string(body),
		kind:           kind,
	}
}

func summarize(req *http.Request, query url.Values, authorization string, fresh bool) RequestSummary {
	s := RequestSummary{
		Method:     req.Method,
		URL:        req.URL.Scheme + "://" + req.URL.Host + req.URL.Path,
		Fresh:      fresh,
		Credential: credential.Describe(authorization),
	}

	if len(query) > 0 {
		s.Query = make(map[string]string, len(query))
		for k := range query {
			s.Query[k] = query.Get(k)
		}
	}

	return s
}
