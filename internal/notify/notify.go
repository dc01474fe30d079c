package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Notifier delivers a report text to one recipient. Delivery mechanics are
// outside the report pipeline; failures are per-recipient and do not stop
// delivery to others.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// WebhookNotifier POSTs reports to an external delivery endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) Send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes reports to the log. Used when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, chatID int64, text string) error {
	n.logger.Info("report ready",
		zap.Int64("chat_id", chatID),
		zap.String("report", text))
	return nil
}
