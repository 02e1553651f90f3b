package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["message"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient(time.Second).PostJSON(context.Background(), srv.URL,
		map[string]string{"Authorization": "Bearer sk-test"},
		map[string]string{"message": "hello"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out["echo"])
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(time.Second).PostJSON(context.Background(), srv.URL, nil, map[string]string{}, nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rate limited")
}

func TestPostJSON_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient(time.Second).PostJSON(context.Background(), srv.URL, nil, map[string]string{}, &out)
	assert.ErrorContains(t, err, "decode response")
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(0).PostJSON(ctx, "http://127.0.0.1:0", nil, map[string]string{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
