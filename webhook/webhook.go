package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/use-agent/seometa/models"
)

// SignatureHeader carries the HMAC-SHA256 of the request body when a secret
// is configured, formatted as sha256=<hex>.
const SignatureHeader = "X-SEOMeta-Signature"

// EventBatchCompleted is sent once per finished batch.
const EventBatchCompleted = "batch.completed"

// DefaultRetryDelays are the waits before each retry after the first attempt.
var DefaultRetryDelays = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Notifier posts events to a single configured endpoint.
type Notifier struct {
	url         string
	secret      string
	client      *http.Client
	retryDelays []time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// WithRetryDelays overrides DefaultRetryDelays.
func WithRetryDelays(d ...time.Duration) Option {
	return func(n *Notifier) { n.retryDelays = d }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// New returns a Notifier for url, or nil when url is empty.
func New(url, secret string, opts ...Option) *Notifier {
	if url == "" {
		return nil
	}
	n := &Notifier{
		url:         url,
		secret:      secret,
		client:      &http.Client{Timeout: 10 * time.Second},
		retryDelays: DefaultRetryDelays,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends event synchronously.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SEOMeta-Webhook/1.0")
	if n.secret != "" {
		req.Header.Set(SignatureHeader, Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends event in the background, retrying after each of the
// configured delays. Use Wait to block until in-flight deliveries finish.
func (n *Notifier) DeliverAsync(event *Event) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		delays := append([]time.Duration{0}, n.retryDelays...)
		for attempt, delay := range delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := n.Deliver(ctx, event)
			cancel()
			if err == nil {
				n.logger.Info("webhook delivered",
					"event", event.Type,
					"job_id", event.JobID,
					"attempt", attempt+1,
				)
				return
			}
			n.logger.Warn("webhook delivery failed",
				"event", event.Type,
				"job_id", event.JobID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		n.logger.Error("webhook delivery exhausted all retries",
			"event", event.Type,
			"job_id", event.JobID,
		)
	}()
}

// Wait blocks until every DeliverAsync call has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// BatchCompleted announces a finished batch. Only the summary is sent;
// per-URL results stay with the caller.
func (n *Notifier) BatchCompleted(res *models.BatchResult) {
	n.DeliverAsync(&Event{
		Type:      EventBatchCompleted,
		JobID:     res.ID,
		Timestamp: time.Now().Unix(),
		Data:      res.Summary,
	})
}
