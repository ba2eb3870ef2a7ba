// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	var gotQuery url.Values
	var gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAgent = r.UserAgent()
		w.Write([]byte("payload"))
	}))
	defer ts.Close()

	params := url.Values{"term": {"cancer therapy"}, "retmax": {"5"}}
	body, err := Get(context.Background(), ts.Client(), ts.URL, params, "test/0.1")
	require.NoError(t, err)

	assert.Equal(t, "payload", string(body))
	assert.Equal(t, "cancer therapy", gotQuery.Get("term"))
	assert.Equal(t, "5", gotQuery.Get("retmax"))
	assert.Equal(t, "test/0.1", gotAgent)
}

func TestGet_NoParams(t *testing.T) {
	var rawQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
	}))
	defer ts.Close()

	_, err := Get(context.Background(), ts.Client(), ts.URL, nil, "")
	require.NoError(t, err)
	assert.Empty(t, rawQuery)
}

func TestGet_StatusErrorCarriesBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, "Invalid query"},
		{"server error", http.StatusInternalServerError, "backend down"},
		{"too many requests", http.StatusTooManyRequests, `{"error":"API rate limit exceeded"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := Get(context.Background(), ts.Client(), ts.URL, nil, "")
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se), "want *StatusError, got %T", err)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.body, se.Body)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
		})
	}
}

func TestGet_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := ts.URL
	ts.Close()

	_, err := Get(context.Background(), &http.Client{}, base, nil, "")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te), "want *TransportError, got %T", err)
	assert.Equal(t, base, te.URL)
}

func TestGet_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Get(ctx, ts.Client(), ts.URL, nil, "")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
