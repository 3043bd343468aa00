// Package notify delivers change summaries through a Home Assistant
// notify service.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pders01/casewatch/internal/config"
)

// HomeAssistant posts notifications to a Home Assistant instance
// using a long-lived access token.
type HomeAssistant struct {
	url        string
	token      string
	service    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHomeAssistant creates a notifier from the home_assistant config
// section. An unconfigured section yields a notifier that skips
// delivery with a warning instead of failing the cycle.
func NewHomeAssistant(cfg config.HomeAssistant, logger *slog.Logger) *HomeAssistant {
	return &HomeAssistant{
		url:        strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		service:    cfg.NotifyService,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Notify delivers a title and multi-line message. Delivery failure is
// returned to the caller, who logs it and moves on; the snapshot for
// the case is kept either way.
func (h *HomeAssistant) Notify(ctx context.Context, title, message string) error {
	if h.url == "" || h.token == "" {
		h.logger.Warn("home assistant not configured, skipping notification")
		return nil
	}

	// notify_service is configured as "notify.<target>"; the REST
	// endpoint wants only the target.
	target := h.service
	if i := strings.LastIndex(target, "."); i >= 0 {
		target = target[i+1:]
	}

	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/api/services/notify/%s", h.url, target)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}

	h.logger.Info("notification sent", "title", title)
	return nil
}
