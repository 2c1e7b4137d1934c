// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

func breakerClient(cfg types.BreakerConfig) *http.Client {
	return &http.Client{Transport: NewBreakerTransport("test", http.DefaultTransport, cfg)}
}

func TestBreakerTransport_PassesSuccessThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := breakerClient(types.BreakerConfig{Enabled: true, MaxFailures: 2, Cooldown: time.Minute})

	var payload map[string]any
	err := GetJSON(context.Background(), client, ts.URL, nil, &payload)
	require.NoError(t, err)
}

func TestBreakerTransport_ServerErrorReachesCaller(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := breakerClient(types.BreakerConfig{Enabled: true, MaxFailures: 5, Cooldown: time.Minute})

	var payload map[string]any
	err := GetJSON(context.Background(), client, ts.URL, nil, &payload)
	require.Error(t, err)
	assert.True(t, IsServerError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBreakerTransport_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := breakerClient(types.BreakerConfig{Enabled: true, MaxFailures: 2, Cooldown: time.Minute})

	var payload map[string]any
	for i := 0; i < 2; i++ {
		err := GetJSON(context.Background(), client, ts.URL, nil, &payload)
		require.Error(t, err)
		assert.True(t, IsServerError(err), "request %d should surface the 500", i)
	}

	// Breaker is open now; the backend must not be contacted again.
	err := GetJSON(context.Background(), client, ts.URL, nil, &payload)
	require.Error(t, err)
	assert.True(t, IsCircuitOpen(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBreakerTransport_RecoversAfterCooldown(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		if fail.Load() {
			http.Error(w, "internal", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := breakerClient(types.BreakerConfig{Enabled: true, MaxFailures: 1, Cooldown: 20 * time.Millisecond})

	var payload map[string]any
	require.Error(t, GetJSON(context.Background(), client, ts.URL, nil, &payload))
	assert.True(t, IsCircuitOpen(GetJSON(context.Background(), client, ts.URL, nil, &payload)))

	fail.Store(false)
	time.Sleep(30 * time.Millisecond)

	err := GetJSON(context.Background(), client, ts.URL, nil, &payload)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBreakerTransport_DisabledPassesThrough(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := breakerClient(types.BreakerConfig{Enabled: false})

	var payload map[string]any
	for i := 0; i < 4; i++ {
		err := GetJSON(context.Background(), client, ts.URL, nil, &payload)
		require.Error(t, err)
		assert.True(t, IsServerError(err))
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestNewBreakerTransport_NilBaseUsesDefault(t *testing.T) {
	rt := NewBreakerTransport("test", nil, types.BreakerConfig{Enabled: true, MaxFailures: 1, Cooldown: time.Minute})
	bt, ok := rt.(*breakerTransport)
	require.True(t, ok)
	assert.Equal(t, http.DefaultTransport, bt.base)
}
