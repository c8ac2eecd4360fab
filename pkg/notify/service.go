package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	goslack "github.com/slack-go/slack"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
)

// Priority thresholds, mirrored from original_source/notifier.py's Gotify
// priority levels (PRIORITY_LOW/MEDIUM/HIGH = 2/5/8).
const (
	PriorityLow    = 2
	PriorityMedium = 5
	PriorityHigh   = 8
)

const defaultDedupWindow = 10 * time.Minute

// Service is a Slack-backed Sink. Nil-safe: every method is a no-op on a
// nil receiver, matching the teacher's pkg/slack.Service convention.
type Service struct {
	api     *goslack.Client
	channel string
	logger  *slog.Logger

	mu          sync.Mutex
	recent      map[string]time.Time
	dedupWindow time.Duration
}

// NewFromConfig builds a Sink from cfg: a NoopSink when disabled or
// missing required fields, a Slack-backed Service otherwise.
func NewFromConfig(cfg config.NotifyConfig) Sink {
	if !cfg.Enabled || cfg.Channel == "" {
		return NoopSink{}
	}
	token := os.Getenv(cfg.TokenEnv)
	if token == "" {
		slog.Warn("notify: enabled but token env var is unset, falling back to no-op", "token_env", cfg.TokenEnv)
		return NoopSink{}
	}
	return NewService(token, cfg.Channel)
}

// NewService builds a Service talking to Slack's real API.
func NewService(token, channel string) *Service {
	return newService(goslack.New(token), channel)
}

// NewServiceWithClient builds a Service backed by a pre-built client,
// for tests pointed at a mock API server.
func NewServiceWithClient(api *goslack.Client, channel string) *Service {
	return newService(api, channel)
}

func newService(api *goslack.Client, channel string) *Service {
	return &Service{
		api:         api,
		channel:     channel,
		logger:      slog.Default().With("component", "notify-service"),
		recent:      make(map[string]time.Time),
		dedupWindow: defaultDedupWindow,
	}
}

// Send posts title/message to the configured channel, prefixed by a
// priority emoji. A repeat of the same normalized title+message within
// the dedup window is silently suppressed — the fingerprinting idiom
// pkg/slack uses to avoid duplicate thread replies, applied here to stop
// a flapping check from paging the same alert over and over.
func (s *Service) Send(ctx context.Context, title, message string, priority int) error {
	if s == nil {
		return nil
	}

	fingerprint := normalizeText(title + "|" + message)

	s.mu.Lock()
	if last, ok := s.recent[fingerprint]; ok && time.Since(last) < s.dedupWindow {
		s.mu.Unlock()
		return nil
	}
	s.recent[fingerprint] = time.Now()
	s.pruneLocked()
	s.mu.Unlock()

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	text := fmt.Sprintf("%s *%s*\n%s", priorityEmoji(priority), title, message)
	if _, _, err := s.api.PostMessageContext(sendCtx, s.channel, goslack.MsgOptionText(text, false)); err != nil {
		s.logger.Error("failed to send notification", "title", title, "error", err)
		return fmt.Errorf("notify: chat.postMessage failed: %w", err)
	}
	return nil
}

// pruneLocked evicts dedup entries older than the window. Called under
// s.mu.
func (s *Service) pruneLocked() {
	cutoff := time.Now().Add(-s.dedupWindow)
	for fp, ts := range s.recent {
		if ts.Before(cutoff) {
			delete(s.recent, fp)
		}
	}
}

func priorityEmoji(priority int) string {
	switch {
	case priority >= PriorityHigh:
		return "🚨"
	case priority >= PriorityMedium:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
