package opendota

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
	"github.com/riskibarqy/dota-coach/internal/platform/resilience"
	"github.com/riskibarqy/dota-coach/internal/usecase"
)

const defaultBaseURL = "https://api.opendota.com/api"

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)
var errOpenDotaTransient = crerr.New("opendota transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches raw match documents from the OpenDota REST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchMatch returns the provider's match document as a generic JSON
// object. The digest layer owns all interpretation of the payload.
func (c *Client) FetchMatch(ctx context.Context, matchID int64) (map[string]any, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be positive", usecase.ErrInvalidInput)
	}

	raw, err := c.doJSON(ctx, "/matches/"+strconv.FormatInt(matchID, 10))
	if err != nil {
		return nil, fmt.Errorf("fetch match match_id=%d: %w", matchID, err)
	}

	payload := make(map[string]any)
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode match payload match_id=%d: %v", usecase.ErrDependencyUnavailable, matchID, err)
	}
	return payload, nil
}

func (c *Client) doJSON(ctx context.Context, path string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "opendota circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: match provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if c.apiKey != "" {
		fullURL += "?api_key=" + url.QueryEscape(c.apiKey)
	}

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isOpenDotaCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeout(err) {
				lastErr = fmt.Errorf("%w: %s", usecase.ErrDependencyTimeout, sanitizeSensitiveText(err.Error(), c.apiKey))
			} else {
				lastErr = fmt.Errorf("%w: send request: %s", errOpenDotaTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
			}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOpenDotaTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: provider has no such match", usecase.ErrNotFound)
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("%w: provider throttled the request", usecase.ErrRateLimited)
			case resp.StatusCode >= http.StatusInternalServerError:
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errOpenDotaTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	if stderrors.Is(lastErr, errOpenDotaTransient) {
		lastErr = fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, lastErr)
	}
	c.logger.WarnContext(ctx, "opendota request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isOpenDotaCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errOpenDotaTransient) ||
		stderrors.Is(err, usecase.ErrDependencyUnavailable) ||
		stderrors.Is(err, usecase.ErrDependencyTimeout)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_key") {
		query.Set("api_key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
