package notify

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
)

const defaultPushoverURL = "https://api.pushover.net/1/messages.json"

// PushoverNotifier delivers alerts through the Pushover message API.
// Delivery is best-effort: Send reports success or failure and never
// blocks the trading pipeline on an alerting outage.
type PushoverNotifier struct {
	client *resty.Client
	token  string
	user   string
}

var _ interfaces.Notifier = (*PushoverNotifier)(nil)

// NewPushoverNotifier reads PUSHOVER_TOKEN and PUSHOVER_USER from the
// environment. Missing credentials are a configuration error, caught
// at startup rather than on the first alert.
func NewPushoverNotifier() (*PushoverNotifier, error) {
	token := os.Getenv("PUSHOVER_TOKEN")
	user := os.Getenv("PUSHOVER_USER")
	if token == "" || user == "" {
		return nil, fmt.Errorf("pushover credentials missing: PUSHOVER_TOKEN and PUSHOVER_USER must be set")
	}

	url := defaultPushoverURL
	if u := os.Getenv("PUSHOVER_API_URL"); u != "" {
		url = u
	}

	client := resty.New().
		SetBaseURL(url).
		SetTimeout(10 * time.Second).
		SetRetryCount(0)

	return &PushoverNotifier{client: client, token: token, user: user}, nil
}

// Send pushes one message. A false return means the alert was lost;
// callers decide whether that matters.
func (p *PushoverNotifier) Send(ctx context.Context, message, title string, priority int) bool {
	var result struct {
		Status int      `json:"status"`
		Errors []string `json:"errors"`
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"token":    p.token,
			"user":     p.user,
			"message":  message,
			"title":    title,
			"priority": strconv.Itoa(priority),
		}).
		SetResult(&result).
		SetError(&result).
		Post("")
	if err != nil {
		logger.Warn(ctx, "Pushover delivery failed", "error", err)
		return false
	}
	if resp.IsError() || result.Status != 1 {
		logger.Warn(ctx, "Pushover rejected message",
			"http_status", resp.StatusCode(),
			"api_errors", fmt.Sprint(result.Errors),
		)
		return false
	}
	return true
}
