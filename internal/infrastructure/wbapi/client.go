package wbapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/config"
	"github.com/LavaJover/shvark-rotation-service/internal/domain"
)

// TokenProvider resolves the marketplace API token for an account
type TokenProvider interface {
	Token(accountID string) (string, error)
}

// RetryObserver is notified each time a request is retried after
// the marketplace answered with HTTP 429
type RetryObserver interface {
	RecordRateLimitRetry(accountID string)
}

type StaticTokenProvider struct {
	tokens map[string]string
}

func NewStaticTokenProvider(accounts []config.AccountToken) *StaticTokenProvider {
	tokens := make(map[string]string, len(accounts))
	for _, account := range accounts {
		tokens[account.AccountID] = account.Token
	}
	return &StaticTokenProvider{tokens: tokens}
}

func (p *StaticTokenProvider) Token(accountID string) (string, error) {
	token, ok := p.tokens[accountID]
	if !ok || token == "" {
		return "", fmt.Errorf("%w: no API token for account %s", domain.ErrNotFound, accountID)
	}
	return token, nil
}

// Client talks to the marketplace advert/analytics/content APIs.
// Every request goes through doWithRetry, which retries only on
// rate limiting and bounds the total number of attempts
type Client struct {
	advertBaseURL    string
	analyticsBaseURL string
	contentBaseURL   string
	httpClient       *http.Client
	tokens           TokenProvider
	maxAttempts      int
	backoffBase      time.Duration
	retryObserver    RetryObserver
}

// SetRetryObserver wires rate-limit retry accounting. A nil observer
// disables it
func (c *Client) SetRetryObserver(observer RetryObserver) {
	c.retryObserver = observer
}

func NewClient(cfg config.WBApi, tokens TokenProvider) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = 500 * time.Millisecond
	}

	return &Client{
		advertBaseURL:    cfg.AdvertBaseURL,
		analyticsBaseURL: cfg.AnalyticsBaseURL,
		contentBaseURL:   cfg.ContentBaseURL,
		httpClient:       &http.Client{Timeout: cfg.RequestTimeout},
		tokens:           tokens,
		maxAttempts:      maxAttempts,
		backoffBase:      backoffBase,
	}
}

// doWithRetry executes the request built by build, retrying only on HTTP 429.
// A server-supplied Retry-After is honored when parseable, otherwise the
// delay is backoffBase * 2^attempt. Any other failure propagates immediately
func (c *Client) doWithRetry(ctx context.Context, accountID string, build func() (*http.Request, error)) ([]byte, error) {
	var lastDelay time.Duration

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(lastDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		request, err := build()
		if err != nil {
			return nil, err
		}

		response, err := c.httpClient.Do(request.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
		}

		responseBodyBytes, err := io.ReadAll(response.Body)
		response.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", domain.ErrExternalService, err)
		}

		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return responseBodyBytes, nil
		}

		if response.StatusCode == http.StatusTooManyRequests {
			if c.retryObserver != nil {
				c.retryObserver.RecordRateLimitRetry(accountID)
			}
			lastDelay = c.backoffBase << attempt
			if ra := response.Header.Get("Retry-After"); ra != "" {
				if seconds, err := strconv.Atoi(ra); err == nil && seconds >= 0 {
					lastDelay = time.Duration(seconds) * time.Second
				}
			}
			continue
		}

		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrExternalService, response.StatusCode, truncate(responseBodyBytes, 256))
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", domain.ErrRateLimited, c.maxAttempts)
}

func (c *Client) token(accountID string) (string, error) {
	return c.tokens.Token(accountID)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
