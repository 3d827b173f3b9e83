package alerting

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
)

func TestWebhookNotifier_PostsAlertPayload(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookNotifierConfig{
		Enabled:   true,
		URL:       server.URL,
		AuthToken: "hook-secret",
	}, nil)

	err := notifier.NotifyRun(context.Background(), RunAlert{
		Kind:       "match_sync",
		RunID:      "run-1",
		ErrorCount: 2,
		Details:    []string{"external_id=9: missing team names"},
	})
	if err != nil {
		t.Fatalf("NotifyRun error: %v", err)
	}

	if gotAuth != "Bearer hook-secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}

	var decoded RunAlert
	if err := sonic.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decode alert body: %v", err)
	}
	if decoded.Kind != "match_sync" || decoded.ErrorCount != 2 {
		t.Fatalf("unexpected alert: %+v", decoded)
	}
	if decoded.OccurredAt == "" {
		t.Fatal("expected occurred_at to be stamped")
	}
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookNotifierConfig{
		Enabled: true,
		URL:     server.URL,
		Retries: 2,
	}, nil)

	if err := notifier.NotifyRun(context.Background(), RunAlert{Kind: "score_processing"}); err != nil {
		t.Fatalf("NotifyRun error: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got=%d", got)
	}
}

func TestWebhookNotifier_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookNotifierConfig{
		Enabled: true,
		URL:     server.URL,
		Retries: 3,
	}, nil)

	if err := notifier.NotifyRun(context.Background(), RunAlert{Kind: "match_sync"}); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got=%d", got)
	}
}

func TestWebhookNotifier_DisabledIsANoop(t *testing.T) {
	t.Parallel()

	notifier := NewWebhookNotifier(WebhookNotifierConfig{Enabled: false, URL: "http://example.invalid"}, nil)
	if notifier.Enabled() {
		t.Fatal("expected notifier to be disabled")
	}
	if err := notifier.NotifyRun(context.Background(), RunAlert{Kind: "match_sync"}); err != nil {
		t.Fatalf("disabled notifier must not error, got %v", err)
	}
}

func TestWebhookNotifier_InvalidURLFailsFast(t *testing.T) {
	t.Parallel()

	notifier := NewWebhookNotifier(WebhookNotifierConfig{Enabled: true, URL: "ftp://example.com"}, nil)
	start := time.Now()
	if err := notifier.NotifyRun(context.Background(), RunAlert{Kind: "match_sync"}); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	if time.Since(start) > time.Second {
		t.Fatal("validation must fail without network delay")
	}
}
