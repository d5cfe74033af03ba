package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/config"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

type capturedBatches struct {
	mu       sync.Mutex
	requests int
	entries  []map[string]any
	auth     string
}

func newBetterStackServer(t *testing.T, captured *capturedBatches) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch []map[string]any
		if err := json.Unmarshal(body, &batch); err != nil {
			t.Errorf("batch is not a json array: %v: %s", err, body)
		}

		captured.mu.Lock()
		captured.requests++
		captured.entries = append(captured.entries, batch...)
		captured.auth = r.Header.Get("Authorization")
		captured.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
}

func TestInitBetterStackLogger_ShipsWarnings(t *testing.T) {
	t.Parallel()

	var captured capturedBatches
	server := newBetterStackServer(t, &captured)
	defer server.Close()

	cfg := config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: server.URL,
		BetterStackToken:    "secret-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelWarn,
		ServiceName:         "fixture-feed",
		AppEnv:              config.EnvDev,
	}

	logger, shutdown, err := InitBetterStackLogger(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.WarnContext(context.Background(), "source unavailable, falling back", "source", "footballdata")
	logger.ErrorContext(context.Background(), "sync run failed", "component", "sync")
	logger.InfoContext(context.Background(), "info log should not be shipped")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	captured.mu.Lock()
	defer captured.mu.Unlock()
	if captured.requests != 1 {
		t.Fatalf("expected one batched request, got %d", captured.requests)
	}
	if len(captured.entries) != 2 {
		t.Fatalf("expected 2 shipped entries, got %d: %+v", len(captured.entries), captured.entries)
	}
	if captured.entries[0]["message"] != "source unavailable, falling back" || captured.entries[0]["source"] != "footballdata" {
		t.Fatalf("unexpected first entry: %+v", captured.entries[0])
	}
	if captured.entries[1]["service"] != "fixture-feed" {
		t.Fatalf("expected service field, got %+v", captured.entries[1])
	}
	if captured.auth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", captured.auth)
	}
}

func TestInitBetterStackLogger_Disabled(t *testing.T) {
	base := logging.NewNop()
	logger, shutdown, err := InitBetterStackLogger(config.Config{}, base)
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected base logger when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitBetterStackLogger_RequiresEndpoint(t *testing.T) {
	_, _, err := InitBetterStackLogger(config.Config{BetterStackEnabled: true}, logging.NewNop())
	if err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	cases := map[string]string{
		"":                                "",
		"in.logs.betterstack.com":         "https://in.logs.betterstack.com",
		" http://localhost:9000 ":         "http://localhost:9000",
		"https://in.logs.betterstack.com": "https://in.logs.betterstack.com",
	}
	for in, want := range cases {
		if got := normalizeBetterStackEndpoint(in); got != want {
			t.Fatalf("normalizeBetterStackEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBetterStackShipper_DropsWhenClosed(t *testing.T) {
	shipper := newBetterStackShipper("http://127.0.0.1:1", "", time.Millisecond)
	if err := shipper.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n, err := shipper.Write([]byte(`{"message":"late"}`)); err != nil || n == 0 {
		t.Fatalf("write after close should be a no-op, got %d %v", n, err)
	}
	shipper.mu.Lock()
	defer shipper.mu.Unlock()
	if len(shipper.pending) != 0 {
		t.Fatalf("expected nothing pending after close")
	}
}
