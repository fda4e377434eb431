package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// RecordedRequest is the part of an incoming request that tests assert on.
type RecordedRequest struct {
	Path   string
	Query  url.Values
	Header http.Header
}

// MockLocationServer provides a configurable mock of the fulfillment location
// service for testing. Both the single location and the list endpoint answer
// with the currently configured response.
type MockLocationServer struct {
	Server *httptest.Server

	mu         sync.Mutex
	statusCode int
	body       any
	requests   []RecordedRequest
}

// SetupMockLocationServer creates a mock fulfillment location service that
// answers 200 with an empty JSON array until Respond is called. The server is
// closed automatically via t.Cleanup().
func SetupMockLocationServer(t *testing.T) *MockLocationServer {
	t.Helper()

	mock := &MockLocationServer{
		statusCode: http.StatusOK,
		body:       []any{},
	}

	router := http.NewServeMux()

	handler := func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		status, body := mock.statusCode, mock.body
		mock.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			writeBody(w, body)
			return
		}

		WriteJSON(w, body)
	}

	router.HandleFunc("GET /v1/fulfillmentlocations", handler)
	router.HandleFunc("GET /v1/fulfillmentlocations/{id}", handler)

	mock.Server = httptest.NewServer(router)
	t.Cleanup(mock.Server.Close)

	return mock
}

// URL is the base URL of the mock service.
func (m *MockLocationServer) URL() string {
	return m.Server.URL
}

// Respond sets the status and body of subsequent responses. A string or
// []byte body is written verbatim; nil writes no body; anything else is
// marshalled to JSON for 200 responses.
func (m *MockLocationServer) Respond(status int, body any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statusCode = status
	m.body = body
}

// RequestCount is the number of requests received.
func (m *MockLocationServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

// LastRequest returns the most recently received request. It fails the test
// if no request has been received.
func (m *MockLocationServer) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.requests) == 0 {
		t.Fatal("no request received by mock location server")
	}
	return m.requests[len(m.requests)-1]
}

// Close shuts down the mock server.
func (m *MockLocationServer) Close() {
	m.Server.Close()
}

func writeBody(w http.ResponseWriter, body any) {
	switch b := body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(b))
	case []byte:
		_, _ = w.Write(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(fmt.Sprintf("failed to marshal mock body: %v", err))
		}
		_, _ = w.Write(data)
	}
}

// WriteJSON is a helper function that writes a JSON response.
// It sets the Content-Type header and marshals the payload to JSON. String and
// []byte payloads are treated as already encoded.
func WriteJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	switch p := payload.(type) {
	case nil, string, []byte:
		writeBody(w, p)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// In test context, this should never happen with valid test data
		http.Error(w, fmt.Sprintf("failed to marshal JSON: %v", err), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}
