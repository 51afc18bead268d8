package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/habitedge/habitedge/internal/metrics"
	"github.com/habitedge/habitedge/internal/model"
	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
)

// WebhookSender delivers signed events to a configured endpoint using
// Standard Webhooks headers, so receivers can verify the payload.
// Deliveries are fire-and-forget: a failure is logged and counted but
// never retried.
type WebhookSender struct {
	url     string
	wh      *standardwebhooks.Webhook
	client  *http.Client
	metrics *metrics.Metrics
}

func NewWebhookSender(url, secret string, m *metrics.Metrics) (*WebhookSender, error) {
	wh, err := standardwebhooks.NewWebhookRaw([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook signer: %w", err)
	}

	return &WebhookSender{
		url:     url,
		wh:      wh,
		client:  &http.Client{Timeout: 10 * time.Second},
		metrics: m,
	}, nil
}

func (s *WebhookSender) publish(event Event) {
	go s.deliver(event)
}

func (s *WebhookSender) TargetCompleted(target *model.Target) { s.publish(newTargetCompleted(target)) }
func (s *WebhookSender) EntryLogged(entry *model.JournalEntry) {
	s.publish(newEntryLogged(entry))
}
func (s *WebhookSender) StreakMilestone(days int) { s.publish(newStreakMilestone(days)) }

func (s *WebhookSender) deliver(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal webhook payload", "type", event.Type, "error", err)
		return
	}

	id := uuid.New().String()
	now := time.Now()

	signature, err := s.wh.Sign(id, now, payload)
	if err != nil {
		slog.Error("failed to sign webhook payload", "type", event.Type, "error", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("failed to build webhook request", "type", event.Type, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("webhook-id", id)
	req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("webhook-signature", signature)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("webhook delivery failed", "type", event.Type, "error", err)
		s.metrics.RecordWebhookDelivery("error")
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		slog.Warn("webhook delivery rejected", "type", event.Type, "status", resp.StatusCode)
		s.metrics.RecordWebhookDelivery("rejected")
		return
	}

	s.metrics.RecordWebhookDelivery("ok")
}
