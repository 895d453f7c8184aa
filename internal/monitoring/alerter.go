// Package monitoring evaluates batch results against thresholds and posts
// alerts to a webhook.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/config"
	"github.com/sells-group/georesolve/internal/pipeline"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertFailureRate   AlertType = "batch_failure_rate"
	AlertExhaustedRate AlertType = "batch_exhausted_rate"
	AlertCircuitOpen   AlertType = "provider_circuit_open"
)

// minBatch is the smallest batch whose rates are worth alerting on.
const minBatch = 5

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Snapshot is what one batch run looked like when it ended.
type Snapshot struct {
	Stats        pipeline.Stats
	OpenCircuits []string
}

// Alerter evaluates a Snapshot against configured thresholds and sends
// alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
	now    func() time.Time
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *Snapshot) []Alert {
	var alerts []Alert
	now := a.now().UTC()
	st := snap.Stats

	if st.Total >= minBatch && a.cfg.FailureRateThreshold > 0 {
		if r := rate(st.Failed, st.Total); r > a.cfg.FailureRateThreshold {
			alerts = append(alerts, Alert{
				Type:     AlertFailureRate,
				Severity: "high",
				Message: fmt.Sprintf("Batch failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d objects)",
					r*100, a.cfg.FailureRateThreshold*100, st.Failed, st.Total),
				Details: map[string]any{
					"failure_rate": r,
					"threshold":    a.cfg.FailureRateThreshold,
					"failed":       st.Failed,
					"total":        st.Total,
				},
				Timestamp: now,
			})
		}
	}

	if st.Total >= minBatch && a.cfg.ExhaustedRateThreshold > 0 {
		if r := rate(st.Exhausted, st.Total); r > a.cfg.ExhaustedRateThreshold {
			alerts = append(alerts, Alert{
				Type:     AlertExhaustedRate,
				Severity: "medium",
				Message: fmt.Sprintf("%.1f%% of objects fell back to their region center (threshold %.1f%%)",
					r*100, a.cfg.ExhaustedRateThreshold*100),
				Details: map[string]any{
					"exhausted_rate": r,
					"threshold":      a.cfg.ExhaustedRateThreshold,
					"exhausted":      st.Exhausted,
					"total":          st.Total,
				},
				Timestamp: now,
			})
		}
	}

	if len(snap.OpenCircuits) > 0 {
		alerts = append(alerts, Alert{
			Type:      AlertCircuitOpen,
			Severity:  "high",
			Message:   fmt.Sprintf("%d provider circuit(s) open at end of batch", len(snap.OpenCircuits)),
			Details:   map[string]any{"providers": snap.OpenCircuits},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
