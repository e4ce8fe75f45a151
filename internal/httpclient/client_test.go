package httpclient_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/lakehouse-bootstrap/internal/httpclient"
)

// newTestServer creates a new test server with keep-alives disabled.
// This prevents flaky tests when running in parallel, as closing a server
// with keep-alives enabled can affect other tests sharing the HTTP transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func TestDefaultClient_Get(t *testing.T) {
	t.Parallel()

	var received http.Header
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"name": "main"}`))
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(5*time.Second, httpclient.WithBearerToken("secret"))

	data, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "main"}`, string(data))
	assert.Equal(t, "lakehouse-bootstrap/1.0", received.Get("User-Agent"))
	assert.Equal(t, "application/json", received.Get("Accept"))
	assert.Equal(t, "Bearer secret", received.Get("Authorization"))
}

func TestDefaultClient_Post(t *testing.T) {
	t.Parallel()

	var body []byte
	var contentType string
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(0)

	_, err := client.Post(context.Background(), server.URL, []byte(`{"name":"bronze"}`))
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"name":"bronze"}`, string(body))
}

func TestDefaultClient_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{name: "404 Not Found", statusCode: http.StatusNotFound, body: `{"error_code":"NOT_FOUND"}`},
		{name: "409 Conflict", statusCode: http.StatusConflict, body: `{"error_code":"RESOURCE_ALREADY_EXISTS"}`},
		{name: "401 Unauthorized", statusCode: http.StatusUnauthorized, body: "Unauthorized"},
		{name: "503 Service Unavailable", statusCode: http.StatusServiceUnavailable, body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := httpclient.NewDefaultClient(5*time.Second).Get(context.Background(), server.URL)
			require.Error(t, err)
			assert.Contains(t, err.Error(), fmt.Sprintf("HTTP %d", tt.statusCode))
			assert.Equal(t, tt.statusCode, httpclient.StatusCode(err))

			var httpErr *httpclient.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.body, string(httpErr.Body))
		})
	}
}

func TestDefaultClient_NetworkErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		errorContains string
	}{
		{
			name:          "invalid URL scheme",
			url:           "://invalid-url",
			errorContains: "failed to create request",
		},
		{
			name:          "invalid URL format",
			url:           "not-a-valid-url",
			errorContains: "failed to execute request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := httpclient.NewDefaultClient(5*time.Second).Get(context.Background(), tt.url)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDefaultClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := httpclient.NewDefaultClient(30*time.Second).Get(ctx, server.URL)
	require.Error(t, err)
}

func TestDefaultClient_SizeLimit(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", httpclient.MaxResponseSize+1))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := httpclient.NewDefaultClient(5*time.Second).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestDefaultClient_WithTransport(t *testing.T) {
	t.Parallel()

	var called bool
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(http.NoBody),
			Header:     http.Header{},
			Request:    req,
		}, nil
	})

	client := httpclient.NewDefaultClient(5*time.Second, httpclient.WithTransport(rt))
	_, err := client.Get(context.Background(), "http://unity.invalid/api")
	require.NoError(t, err)
	assert.True(t, called)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
