package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, opts ...Option) *Client {
	opts = append([]Option{
		WithBaseURL(url),
		WithServiceName("notion"),
		WithRateLimit(0),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	}, opts...)
	return New(&BearerAuth{}, "secret", opts...)
}

func TestAuthenticators(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	NoAuth{}.Apply(req, "token")
	assert.Empty(t, req.Header)

	BearerAuth{}.Apply(req, "token")
	assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
}

func TestDoSendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/v1/databases/db/query", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(100), body["page_size"])

		_, _ = w.Write([]byte(`{"object":"list","has_more":false}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL+"/v1", WithHeader("Notion-Version", "2022-06-28"))
	var out struct {
		Object  string `json:"object"`
		HasMore bool   `json:"has_more"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/databases/db/query", map[string]any{"page_size": 100}, &out)
	require.NoError(t, err)
	assert.Equal(t, "list", out.Object)
}

func TestDoRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Do(context.Background(), http.MethodGet, "/users/me", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, WithRetries(2)).Do(context.Background(), http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailable(err))
	assert.Equal(t, int32(3), calls.Load())

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestDoDoesNotRetryRejections(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"Title is not a property that exists."}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Do(context.Background(), http.MethodPost, "/pages", map[string]any{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsServiceRejected(err))
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "Title is not a property that exists.", apiErr.Message)
	assert.Equal(t, "POST /pages", apiErr.Endpoint)
}

func TestDoNotIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		status int
		calls  int32
		ok     bool
	}{
		{"gateway error is not repeated", http.StatusBadGateway, 1, false},
		{"unavailable is not repeated", http.StatusServiceUnavailable, 1, false},
		{"conflict is not repeated", http.StatusConflict, 1, false},
		{"rate limit is retried", http.StatusTooManyRequests, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.Header().Set("Retry-After", "0")
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(`{"id":"page-2"}`))
			}))
			defer srv.Close()

			var out struct {
				ID string `json:"id"`
			}
			err := newTestClient(srv.URL, WithRetries(3)).
				Do(context.Background(), http.MethodPost, "/pages", map[string]any{}, &out, NotIdempotent())
			assert.Equal(t, tt.calls, calls.Load())
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "page-2", out.ID)
				return
			}
			require.Error(t, err)
			var apiErr *errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestWithHTTPClientLeavesCallerClient(t *testing.T) {
	shared := &http.Client{}
	c := New(nil, "", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Zero(t, shared.Timeout)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.NotSame(t, shared, c.http)

	New(nil, "", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))
	assert.Zero(t, http.DefaultClient.Timeout)
}

func TestDoCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newTestClient(srv.URL).Do(ctx, http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryAfter(t *testing.T) {
	d, ok := RetryAfter("2")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	d, ok = RetryAfter(time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.True(t, ok)
	assert.Zero(t, d)

	_, ok = RetryAfter("soon")
	assert.False(t, ok)
	_, ok = RetryAfter("")
	assert.False(t, ok)
}

func TestDelayDoublesUpToCap(t *testing.T) {
	c := New(nil, "", WithBackoff(time.Second, 3*time.Second))
	assert.Equal(t, time.Second, c.delay(0, nil))
	assert.Equal(t, 2*time.Second, c.delay(1, nil))
	assert.Equal(t, 3*time.Second, c.delay(2, nil))
}
