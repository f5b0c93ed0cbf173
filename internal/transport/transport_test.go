package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_OK(t *testing.T) {
	assert.True(t, Response{StatusCode: 200}.OK())
	assert.True(t, Response{StatusCode: 204}.OK())
	assert.False(t, Response{StatusCode: 199}.OK())
	assert.False(t, Response{StatusCode: 301}.OK())
	assert.False(t, Response{StatusCode: 404}.OK())
	assert.False(t, Response{StatusCode: 500}.OK())
}

func TestClient_SendRoundTrip(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Options{}, nil)
	resp, err := c.Send(context.Background(), Request{
		Method:  "POST",
		URL:     srv.URL + "/api/phoenix/group",
		Headers: map[string]string{"csrf": "token", "Content-Type": "application/json"},
		Body:    []byte(`{"name":"Kitchen"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	require.NotNil(t, got)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "/api/phoenix/group", got.URL.Path)
	assert.Equal(t, "token", got.Header.Get("csrf"))
	assert.Equal(t, `{"name":"Kitchen"}`, string(gotBody))
}

func TestClient_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Options{}, nil)
	resp, err := c.Send(context.Background(), Request{Method: "GET", URL: srv.URL})

	require.NoError(t, err, "HTTP error statuses come back as responses")
	assert.Equal(t, 429, resp.StatusCode)
	assert.False(t, resp.OK())
}

func TestClient_BreakerOpensOnNetworkFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // every call now fails at the network level

	c := NewClient(Options{MaxConsecutiveFailures: 2}, nil)
	req := Request{Method: "GET", URL: srv.URL}

	_, err := c.Send(context.Background(), req)
	require.Error(t, err)
	_, err = c.Send(context.Background(), req)
	require.Error(t, err)

	_, err = c.Send(context.Background(), req)
	require.Error(t, err)
	assert.ErrorContains(t, err, "circuit breaker is open")
}

func TestClient_BreakerIgnoresErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{MaxConsecutiveFailures: 2}, nil)
	req := Request{Method: "GET", URL: srv.URL}

	for i := 0; i < 5; i++ {
		resp, err := c.Send(context.Background(), req)
		require.NoError(t, err, "call %d must not trip the breaker", i+1)
		assert.Equal(t, 500, resp.StatusCode)
	}
}

func TestRecorder_PlaysScriptThenDefault(t *testing.T) {
	rec := NewRecorder().
		EnqueueStatus(500, `err`).
		EnqueueError(errors.New("reset"))

	resp, err := rec.Send(context.Background(), Request{URL: "https://a/x"})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	_, err = rec.Send(context.Background(), Request{URL: "https://a/y"})
	require.Error(t, err)

	resp, err = rec.Send(context.Background(), Request{URL: "https://a/z"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode, "default after the script runs out")

	assert.Equal(t, 3, rec.CallCount())
	assert.Len(t, rec.CallsTo("/y"), 1)
}
