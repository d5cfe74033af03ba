package observability

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/fixture-feed/internal/config"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

const (
	betterStackBatchSize     = 50
	betterStackFlushInterval = 2 * time.Second
	betterStackMaxPending    = 2048
)

// InitBetterStackLogger tees run logs at or above BetterStackMinLevel to a
// Better Stack HTTP source. Entries are shipped as JSON array batches.
func InitBetterStackLogger(cfg config.Config, baseLogger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if baseLogger == nil {
		baseLogger = logging.NewJSON(cfg.LogLevel)
	}

	if !cfg.BetterStackEnabled {
		baseLogger.Debug("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return baseLogger, func(context.Context) error { return nil }, nil
	}

	endpoint := normalizeBetterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	shipper := newBetterStackShipper(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)
	shipCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "dt",
			LevelKey:       "level",
			MessageKey:     "message",
			CallerKey:      "caller",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
		zapcore.AddSync(shipper),
		cfg.BetterStackMinLevel,
	)

	logger := logging.FromZap(zap.New(
		zapcore.NewTee(baseLogger.Zap().Core(), shipCore),
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(zap.String("service", cfg.ServiceName), zap.String("environment", cfg.AppEnv)))

	logger.Info("betterstack enabled",
		"endpoint", endpoint,
		"min_level", cfg.BetterStackMinLevel.String(),
	)

	return logger, func(ctx context.Context) error {
		drainCtx := ctx
		if drainCtx == nil {
			drainCtx = context.Background()
		}
		if _, hasDeadline := drainCtx.Deadline(); !hasDeadline {
			withTimeout, cancel := context.WithTimeout(drainCtx, 5*time.Second)
			defer cancel()
			drainCtx = withTimeout
		}
		if err := shipper.Close(drainCtx); err != nil {
			return fmt.Errorf("drain betterstack batches: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableLoggerSyncError(err) {
			return err
		}
		return nil
	}, nil
}

func normalizeBetterStackEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

// betterStackShipper buffers encoded entries and posts them in batches.
type betterStackShipper struct {
	endpoint string
	token    string
	timeout  time.Duration
	client   *fasthttp.Client

	mu      sync.Mutex
	pending [][]byte
	closed  bool

	flush     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
	sent      atomic.Uint64
}

func newBetterStackShipper(endpoint, token string, timeout time.Duration) *betterStackShipper {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	s := &betterStackShipper{
		endpoint: endpoint,
		token:    token,
		timeout:  timeout,
		client: &fasthttp.Client{
			Name:         "fixture-feed-logs",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		flush: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go s.run()

	return s
}

func (s *betterStackShipper) Write(p []byte) (int, error) {
	payload := bytes.TrimSpace(p)
	if len(payload) == 0 {
		return len(p), nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return len(p), nil
	}
	if len(s.pending) >= betterStackMaxPending {
		s.mu.Unlock()
		if dropped := s.dropped.Add(1); dropped == 1 || dropped%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack buffer full; dropped logs=%d\n", dropped)
		}
		return len(p), nil
	}
	// zap reuses its buffer after Write returns.
	s.pending = append(s.pending, append([]byte(nil), payload...))
	if len(s.pending) >= betterStackBatchSize {
		select {
		case s.flush <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
	return len(p), nil
}

func (s *betterStackShipper) Sync() error {
	return nil
}

func (s *betterStackShipper) run() {
	defer close(s.done)

	ticker := time.NewTicker(betterStackFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case _, ok := <-s.flush:
			if !ok {
				s.sendPending()
				return
			}
		}
		s.sendPending()
	}
}

func (s *betterStackShipper) sendPending() {
	for {
		s.mu.Lock()
		n := min(len(s.pending), betterStackBatchSize)
		batch := s.pending[:n:n]
		s.pending = s.pending[n:]
		s.mu.Unlock()

		if n == 0 {
			return
		}
		s.send(batch)
	}
}

func (s *betterStackShipper) send(batch [][]byte) {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	_ = body.WriteByte('[')
	for i, entry := range batch {
		if i > 0 {
			_ = body.WriteByte(',')
		}
		_, _ = body.Write(entry)
	}
	_ = body.WriteByte(']')

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.SetBodyRaw(body.B)

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		fmt.Fprintf(os.Stderr, "betterstack send batch failed: %v\n", err)
		return
	}
	if resp.StatusCode() >= fasthttp.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack send batch got non-2xx status=%d\n", resp.StatusCode())
		return
	}
	s.sent.Add(uint64(len(batch)))
}

// Close stops accepting entries and waits for the final flush.
func (s *betterStackShipper) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.flush)
		s.mu.Unlock()
	})

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isIgnorableLoggerSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
