// SPDX-License-Identifier: MIT

package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportarr/sportarr/internal/config"
)

func TestWebhookSinkDelivers(t *testing.T) {
	var got Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer server.Close()

	sink := NewWebhookSink(config.NotificationTarget{
		Type:    "webhook",
		URL:     server.URL,
		Headers: map[string]string{"X-Api-Key": "secret"},
	})
	err := sink.Emit(context.Background(), Event{
		Type:   PerFileLinked,
		PassID: "pass-1",
		Dest:   "/lib/a.mkv",
		At:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, PerFileLinked, got.Type)
	assert.Equal(t, "/lib/a.mkv", got.Dest)
}

func TestWebhookSinkSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sink := NewWebhookSink(config.NotificationTarget{URL: server.URL})
	err := sink.Emit(context.Background(), Event{Type: PassSummary})
	require.Error(t, err)
}

func TestRefreshTriggerPostsSummary(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "pass-7")
	}))
	defer server.Close()

	trigger := NewRefreshTrigger(server.URL)
	trigger.Trigger(context.Background(), "pass-7", map[string]any{"linked": 3})
	assert.Equal(t, 1, calls)
}

func TestRefreshTriggerDisabledWithoutURL(t *testing.T) {
	NewRefreshTrigger("").Trigger(context.Background(), "pass-1", nil)
}

func TestDispatcherIgnoresFailingSink(t *testing.T) {
	d := NewDispatcher([]config.NotificationTarget{
		{Type: "webhook", URL: "http://127.0.0.1:1/unreachable"},
	})
	// Must not panic or propagate the delivery error.
	d.Emit(context.Background(), Event{Type: PassSummary, PassID: "p"})
}
