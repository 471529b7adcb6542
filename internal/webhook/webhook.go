// Package webhook posts imported transactions to a user-configured URL.
// Delivery problems are reported to the caller but never undo an import.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/avast/retry-go"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// Metadata describes the import a payload came from.
type Metadata struct {
	BankName   string    `json:"bankName"`
	FileName   string    `json:"fileName"`
	Count      int       `json:"count"`
	ImportedAt time.Time `json:"importedAt"`
}

// Payload is the JSON body sent to the webhook.
type Payload struct {
	Transactions []models.Transaction `json:"transactions"`
	Metadata     Metadata             `json:"metadata"`
}

// Config tunes delivery.
type Config struct {
	Timeout time.Duration
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts uint
	Delay    time.Duration
}

// Notifier delivers payloads over HTTP.
type Notifier struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
	logger   logging.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(cfg Config, logger logging.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &Notifier{
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
		delay:    cfg.Delay,
		logger:   logging.OrDefault(logger).WithField(logging.FieldComponent, "webhook"),
	}
}

// Send posts p to url. An empty url disables delivery and returns nil.
// Failures are returned as *apperror.WebhookError.
func (n *Notifier) Send(ctx context.Context, url string, p Payload) error {
	if url == "" {
		return nil
	}
	if u, err := neturl.Parse(url); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return &apperror.WebhookError{URL: url, Err: errors.New("webhook URL must be an http(s) URL")}
	}
	if p.Transactions == nil {
		p.Transactions = []models.Transaction{}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return &apperror.WebhookError{URL: url, Err: fmt.Errorf("encode payload: %w", err)}
	}

	log := n.logger.WithFields(
		logging.F(logging.FieldURL, url),
		logging.F(logging.FieldCount, p.Metadata.Count),
	)

	err = retry.Do(
		func() error { return n.post(ctx, url, body) },
		retry.Context(ctx),
		retry.Attempts(n.attempts),
		retry.Delay(n.delay),
		retry.RetryIf(func(err error) bool {
			var whErr *apperror.WebhookError
			if errors.As(err, &whErr) && whErr.StatusCode > 0 && whErr.StatusCode < 500 {
				return false
			}
			log.WithError(err).Warn("Webhook delivery failed, will retry")
			return true
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.WithError(err).Error("Webhook delivery failed")
		var whErr *apperror.WebhookError
		if errors.As(err, &whErr) {
			return whErr
		}
		return &apperror.WebhookError{URL: url, Err: err}
	}

	log.Info("Webhook delivered")
	return nil
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &apperror.WebhookError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &apperror.WebhookError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperror.WebhookError{URL: url, StatusCode: resp.StatusCode}
	}
	return nil
}
