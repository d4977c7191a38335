// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reasoning wraps text-completion providers with bounded rate-limit
// retry and a global throughput throttle. Every pipeline stage funnels its
// completions through one Client so the provider's rate limit is respected
// across the whole run, not per stage.
// Implements: prd008-reasoning (R1, R2); docs/ARCHITECTURE § Reasoning.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// Message is one turn of a reasoning conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Service is the capability interface for text-completion providers. When
// jsonMode is set the provider is asked to emit a single JSON value; the
// response is still treated as untrusted text and parsed through jsonutil.
type Service interface {
	Complete(ctx context.Context, messages []Message, jsonMode bool) (string, error)
}

// RateLimitError signals that the provider throttled a request. RetryAfter
// is the provider-suggested wait, zero when the provider gave none.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// ErrUnavailable reports that the provider could not serve a completion.
var ErrUnavailable = errors.New("reasoning service unavailable")

// Completer is the stage-facing completion interface implemented by Client.
// Stages depend on it rather than on Client so tests can stub completions.
type Completer interface {
	Complete(ctx context.Context, prompt, systemPrompt string, jsonMode bool) (string, error)
}

// Client defaults per prd008-reasoning R1.1-R1.3.
const (
	defaultMaxAttempts = 3
	defaultCooldown    = 2 * time.Second
	defaultRetryDelay  = 5 * time.Second
)

// Client wraps a Service with bounded retry and a token-bucket throttle.
// Only rate-limit signals are retried; any other provider error fails the
// completion immediately (R1.4). The throttle admits one call per cooldown
// interval on every path, success included, so sequential prompt chaining
// stays under the provider's steady-state limit (R2.1).
type Client struct {
	svc         Service
	limiter     *rate.Limiter
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

var _ Completer = (*Client)(nil)

// NewClient builds a Client around svc. Zero config fields fall back to the
// defaults (3 attempts, 2s cooldown, 5s retry delay). A nil logger is
// replaced with a no-op logger.
func NewClient(svc Service, cfg types.ReasoningConfig, logger *zap.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		svc:         svc,
		limiter:     rate.NewLimiter(rate.Every(cooldown), 1),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

// Complete performs one throttled completion with bounded rate-limit retry.
// On a rate-limit signal it sleeps the provider-suggested duration (or the
// configured fallback) and retries, up to maxAttempts total attempts. On any
// other error, or after exhausting attempts, the returned error wraps
// ErrUnavailable.
func (c *Client) Complete(ctx context.Context, prompt, systemPrompt string, jsonMode bool) (string, error) {
	messages := make([]Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := c.svc.Complete(ctx, messages, jsonMode)
		if err == nil {
			return text, nil
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			if errors.Is(err, ErrUnavailable) {
				return "", err
			}
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if attempt == c.maxAttempts {
			break
		}

		delay := rl.RetryAfter
		if delay <= 0 {
			delay = c.retryDelay
		}
		c.logger.Warn("reasoning service rate limited",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
			zap.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("rate limited after %d attempts: %w", c.maxAttempts, ErrUnavailable)
}
