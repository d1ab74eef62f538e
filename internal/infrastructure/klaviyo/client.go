package klaviyo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
)

var (
	// ErrPermanentFailure - non-2xx response outside the retryable set; the
	// request is not replayed.
	ErrPermanentFailure = errors.New("permanent delivery failure")
	// ErrRetriesExhausted - transient failures on every allowed attempt.
	ErrRetriesExhausted = errors.New("delivery retries exhausted")
)

// Config is immutable after construction; the client is built once in app.Run
// and injected into the producers.
type Config struct {
	APIKey      string
	BaseURL     string
	Revision    string
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	HTTPTimeout time.Duration
	// ExtraDenyFields extends the built-in sanitization deny list.
	ExtraDenyFields []string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	denyList   map[string]struct{}
	logger     logger.Interface
}

func New(cfg Config, l logger.Interface) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Klaviyo Client - New - api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://a.klaviyo.com/api"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		denyList:   buildDenyList(cfg.ExtraDenyFields),
		logger:     l,
	}, nil
}

// MaxAttempts exposes the retry cap for dead-letter metadata.
func (c *Client) MaxAttempts() int {
	return c.cfg.MaxAttempts
}

// Send delivers one event: sanitize, serialize, POST with retry/backoff.
// Retries are strictly sequential; the idempotency header is identical on
// every attempt so the server can collapse replays.
func (c *Client) Send(ctx context.Context, event *entity.Event) error {
	body, err := json.Marshal(buildPayload(event, c.denyList))
	if err != nil {
		return fmt.Errorf("Klaviyo Client - Send - json.Marshal: %w", err)
	}

	idempotencyHeader := HashIdempotencyKey(event.IdempotencyKey)

	for attempt := 1; ; attempt++ {
		status, err := c.post(ctx, body, idempotencyHeader)

		switch {
		case err == nil && status >= 200 && status < 300:
			return nil

		case err == nil && !isRetryableStatus(status):
			return fmt.Errorf("Klaviyo Client - Send - status %d: %w", status, ErrPermanentFailure)
		}

		// transient: network fault, 429 or 5xx
		if attempt >= c.cfg.MaxAttempts {
			if err != nil {
				return fmt.Errorf("Klaviyo Client - Send - attempt %d - c.post: %v: %w", attempt, err, ErrRetriesExhausted)
			}
			return fmt.Errorf("Klaviyo Client - Send - attempt %d - status %d: %w", attempt, status, ErrRetriesExhausted)
		}

		c.logger.Warn("Klaviyo Client - Send - transient failure, metric=%s attempt=%d status=%d err=%v",
			event.MetricName, attempt, status, err)

		if waitErr := c.wait(ctx, Backoff(attempt, c.cfg.BackoffBase, c.cfg.BackoffCap)); waitErr != nil {
			return fmt.Errorf("Klaviyo Client - Send - c.wait: %w", waitErr)
		}
	}
}

func (c *Client) post(ctx context.Context, body []byte, idempotencyHeader string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("Klaviyo Client - post - http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyHeader)
	req.Header.Set("revision", c.cfg.Revision)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// connection reset, DNS failure, connection refused, timeout - all
		// classified transient
		return 0, fmt.Errorf("Klaviyo Client - post - c.httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	// drain so the connection is reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// HashIdempotencyKey derives the fixed-length header value: the same logical
// occurrence always hashes to the same token, on every attempt and redelivery.
func HashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
