package httpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
	"github.com/riskibarqy/fixture-feed/internal/platform/resilience"
)

const (
	defaultTimeout      = 20 * time.Second
	defaultMaxBodyBytes = 6 << 20
	userAgent           = "fixture-feed/1.0"
	minSecretLen        = 6
)

var (
	// ErrTransient marks failures worth retrying: network errors, timeouts,
	// 429 and 5xx responses.
	ErrTransient = crerr.New("provider transient failure")
	// ErrUnavailable is returned while the provider circuit is open.
	ErrUnavailable = crerr.New("provider temporarily unavailable")

	secretParamRegex = regexp.MustCompile(`(api_token|apikey|api_key|token)=[^&\s"']+`)
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.StatusCode, e.Body)
}

type Config struct {
	Name           string
	BaseURL        string
	Timeout        time.Duration
	Headers        map[string]string
	Secrets        []string
	MaxBodyBytes   int
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	HTTPClient     *fasthttp.Client
}

// Client is a JSON GET transport for one provider. Requests are deduplicated
// per URL, retried with backoff and guarded by a circuit breaker.
type Client struct {
	name    string
	baseURL string
	timeout time.Duration
	headers map[string]string
	secrets []string
	http    *fasthttp.Client
	retry   *resilience.RetryPolicy
	breaker *resilience.CircuitBreaker
	flight  resilience.SingleFlight[[]byte]
	logger  *logging.Logger
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("provider", cfg.Name)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                userAgent,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     8,
			MaxResponseBodySize: maxBody,
		}
	}

	// Short values such as the public TheSportsDB key would redact ordinary
	// digits from every log line.
	secrets := make([]string, 0, len(cfg.Secrets))
	for _, secret := range cfg.Secrets {
		if len(strings.TrimSpace(secret)) >= minSecretLen {
			secrets = append(secrets, secret)
		}
	}

	retryCfg := cfg.Retry
	if retryCfg.PerAttempt <= 0 {
		retryCfg.PerAttempt = resilience.AttemptTimeout(timeout, retryCfg.MaxRetries)
	}

	breaker := resilience.NewCircuitBreaker(cfg.Name, cfg.CircuitBreaker)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("provider circuit state changed", "from", from, "to", to)
	})

	c := &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout: timeout,
		headers: cfg.Headers,
		secrets: secrets,
		http:    httpClient,
		breaker: breaker,
		logger:  logger,
	}
	c.retry = resilience.NewRetryPolicy(retryCfg).WithNotify(func(err error, wait time.Duration) {
		c.logger.Warn("provider request failed, retrying", "wait", wait, "error", c.sanitize(err.Error()))
	})
	return c
}

func (c *Client) Name() string {
	return c.name
}

// GetJSON fetches path and decodes the body into target. The raw body is
// returned for callers that keep it.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, target any) ([]byte, error) {
	raw, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", c.name, err)
	}
	return raw, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "provider circuit breaker rejected request", "state", c.breaker.State())
		return nil, crerr.Wrapf(ErrUnavailable, "%s", c.name)
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, shared := c.flight.Do(fullURL, func() ([]byte, error) {
		raw, reqErr := resilience.Retry(ctx, c.retry, func(attemptCtx context.Context) ([]byte, error) {
			return c.execute(attemptCtx, fullURL)
		})
		c.breaker.Record(reqErr, isCircuitFailure)
		return raw, reqErr
	})
	if err != nil {
		c.logger.WarnContext(ctx, "provider request failed", "url", c.redactURL(fullURL), "error", c.sanitize(err.Error()))
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "provider request shared in flight", "url", c.redactURL(fullURL))
	}
	return out, nil
}

func (c *Client) execute(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(ctxErr, context.Canceled) {
			return nil, resilience.Permanent(ctxErr)
		}
		if stderrors.Is(err, fasthttp.ErrBodyTooLarge) {
			return nil, resilience.Permanent(fmt.Errorf("read %s response: %w", c.name, err))
		}
		return nil, fmt.Errorf("%w: send request: %s", ErrTransient, c.sanitize(err.Error()))
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	if status >= 200 && status < 300 {
		return body, nil
	}

	statusErr := &StatusError{StatusCode: status, Body: abbreviateBody(c.sanitize(string(body)))}
	if isRetryableStatus(status) {
		return nil, fmt.Errorf("%w: %w", ErrTransient, statusErr)
	}
	return nil, resilience.Permanent(statusErr)
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	for _, secret := range c.secrets {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return secretParamRegex.ReplaceAllString(value, "$1=REDACTED")
}

func (c *Client) redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return c.sanitize(rawURL)
	}
	query := parsed.Query()
	for _, key := range []string{"api_token", "apikey", "api_key", "token"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	parsed.RawQuery = query.Encode()
	return c.sanitize(parsed.String())
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, ErrTransient)
}

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool {
	return isCircuitFailure(err)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
