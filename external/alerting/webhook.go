package alerting

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/loolazoola/epl-sub001/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookNotifierConfig struct {
	Enabled        bool
	URL            string
	AuthToken      string
	Timeout        time.Duration
	Retries        int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// RunAlert summarizes a sync or processing run that produced errors.
type RunAlert struct {
	Kind       string   `json:"kind"`
	RunID      string   `json:"run_id"`
	ErrorCount int      `json:"error_count"`
	Details    []string `json:"details,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}

// WebhookNotifier posts run alerts to an operator-configured webhook.
// Delivery is best effort; callers log and move on when it fails.
type WebhookNotifier struct {
	client         *fasthttp.Client
	url            string
	token          string
	retries        int
	timeout        time.Duration
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	enabled        bool
}

func NewWebhookNotifier(cfg WebhookNotifierConfig, logger *slog.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookNotifier{
		client:         &fasthttp.Client{},
		url:            strings.TrimSpace(cfg.URL),
		token:          strings.TrimSpace(cfg.AuthToken),
		retries:        maxInt(cfg.Retries, 0),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		enabled:        cfg.Enabled,
	}
}

func (n *WebhookNotifier) Enabled() bool {
	return n != nil && n.enabled && n.url != ""
}

func (n *WebhookNotifier) NotifyRun(ctx context.Context, alert RunAlert) error {
	if !n.Enabled() {
		return nil
	}
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "alert webhook circuit breaker rejected request", "state", n.breaker.State())
			return fmt.Errorf("alert webhook is temporarily unavailable: %w", err)
		}
	}

	if _, err := validateHTTPURL(n.url); err != nil {
		return crerr.Wrap(err, "invalid ALERT_WEBHOOK_URL")
	}

	if alert.OccurredAt == "" {
		alert.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := sonic.Marshal(alert)
	if err != nil {
		return crerr.Wrap(err, "marshal alert payload")
	}

	n.logger.InfoContext(ctx, "alert webhook request",
		"kind", alert.Kind, "run_id", alert.RunID, "error_count", alert.ErrorCount,
		"preview", buildPayloadPreview(body))

	callErr := n.post(ctx, body)
	n.recordCircuitResult(callErr)
	if callErr != nil {
		return callErr
	}

	n.logger.InfoContext(ctx, "alert delivered", "kind", alert.Kind, "run_id", alert.RunID)
	return nil
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= n.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.SetRequestURI(n.url)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		if n.token != "" {
			req.Header.Set("Authorization", "Bearer "+n.token)
		}
		req.SetBody(body)

		err := n.client.DoTimeout(req, resp, n.timeout)
		status := resp.StatusCode()
		respBody := strings.TrimSpace(string(resp.Body()))
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: post alert: %v", errWebhookTransient, err)
		case status/100 == 2:
			return nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: post alert status=%d body=%s", errWebhookTransient, status, respBody)
		default:
			return fmt.Errorf("post alert status=%d body=%s", status, respBody)
		}

		if attempt == n.retries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("alert webhook request failed")
	}
	return lastErr
}

func (n *WebhookNotifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func buildPayloadPreview(body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	const maxPreview = 1024
	if len(body) > maxPreview {
		_, _ = buf.Write(body[:maxPreview])
		_, _ = buf.WriteString("...(truncated)")
	} else {
		_, _ = buf.Write(body)
	}
	return buf.String()
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
