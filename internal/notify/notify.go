// SPDX-License-Identifier: MIT

// Package notify delivers pass events to configured sinks and fires the
// library refresh trigger.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportarr/sportarr/internal/config"
	applog "github.com/sportarr/sportarr/internal/log"
)

// EventType enumerates the events the core emits.
type EventType string

const (
	PerFileLinked    EventType = "file_linked"
	PassSummary      EventType = "pass_summary"
	RefreshRequested EventType = "refresh_requested"
)

// Event is one notification payload.
type Event struct {
	Type    EventType      `json:"type"`
	PassID  string         `json:"pass_id"`
	SportID string         `json:"sport_id,omitempty"`
	Source  string         `json:"source,omitempty"`
	Dest    string         `json:"destination,omitempty"`
	Summary map[string]any `json:"summary,omitempty"`
	At      time.Time      `json:"at"`
}

// Sink delivers events. Delivery semantics are best effort; failures are
// logged, never propagated into the pass result.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// LogSink writes events as structured log lines.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink logging to the notify component.
func NewLogSink() *LogSink {
	return &LogSink{logger: applog.WithComponent("notify")}
}

func (s *LogSink) Emit(_ context.Context, event Event) error {
	s.logger.Info().
		Str("event", "notify."+string(event.Type)).
		Str("pass_id", event.PassID).
		Str("sport_id", event.SportID).
		Str("source", event.Source).
		Str("destination", event.Dest).
		Msg("notification")
	return nil
}

// WebhookSink POSTs events as JSON to a configured URL.
type WebhookSink struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookSink returns a webhook sink for the target.
func NewWebhookSink(target config.NotificationTarget) *WebhookSink {
	return &WebhookSink{
		url:     target.URL,
		headers: target.Headers,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSink) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Dispatcher fans events out to every configured sink.
type Dispatcher struct {
	sinks  []Sink
	logger zerolog.Logger
}

// NewDispatcher builds sinks from the post_run targets plus a log sink.
func NewDispatcher(targets []config.NotificationTarget) *Dispatcher {
	sinks := []Sink{NewLogSink()}
	for _, target := range targets {
		switch target.Type {
		case "webhook":
			sinks = append(sinks, NewWebhookSink(target))
		case "log", "":
			// log sink is always present
		}
	}
	return &Dispatcher{sinks: sinks, logger: applog.WithComponent("notify")}
}

// Emit delivers the event to all sinks, logging failures.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	for _, sink := range d.sinks {
		if err := sink.Emit(ctx, event); err != nil {
			d.logger.Warn().
				Str("event", "notify.failed").
				Str("type", string(event.Type)).
				Err(err).
				Msg("notification delivery failed")
		}
	}
}

// RefreshTrigger calls the configured library refresh URL at most once per
// pass when new destinations were produced.
type RefreshTrigger struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// NewRefreshTrigger returns a trigger; an empty URL disables it.
func NewRefreshTrigger(url string) *RefreshTrigger {
	return &RefreshTrigger{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: applog.WithComponent("notify"),
	}
}

// Trigger fires the refresh with the pass summary as JSON body.
func (t *RefreshTrigger) Trigger(ctx context.Context, passID string, summary map[string]any) {
	if t.url == "" {
		return
	}
	payload, _ := json.Marshal(map[string]any{"pass_id": passID, "summary": summary})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		t.logger.Warn().Str("event", "refresh.failed").Err(err).Msg("refresh trigger failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn().Str("event", "refresh.failed").Err(err).Msg("refresh trigger failed")
		return
	}
	defer resp.Body.Close()
	t.logger.Info().
		Str("event", "refresh.triggered").
		Str("pass_id", passID).
		Int("status", resp.StatusCode).
		Msg("library refresh requested")
}
