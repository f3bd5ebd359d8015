// Package llm wraps the OpenAI chat completions API behind the small
// surface the council engine needs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/wonny/council/backend/pkg/logger"
)

var (
	// ErrMissingAPIKey is returned by New when no credential is set.
	ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")
	// ErrEmptyCompletion marks a completion with no usable content.
	ErrEmptyCompletion = errors.New("llm returned empty content")
)

const (
	defaultTimeout = 120 * time.Second
	defaultRetries = 2
	defaultRPS     = 2.0
	defaultBurst   = 4
)

// Config holds gateway construction parameters.
type Config struct {
	APIKey            string
	BaseURL           string
	OrgID             string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// ChatConfig is the per-call parameter set. A zero Timeout means the
// client default.
type ChatConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client paces and retries chat completion calls against an
// OpenAI-compatible endpoint.
type Client struct {
	api            *openai.Client
	limiter        *rate.Limiter
	log            *logger.Logger
	defaultTimeout time.Duration
	retries        int
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.OrgID != "" {
		apiCfg.OrgID = cfg.OrgID
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		log:            log,
		defaultTimeout: timeout,
		retries:        defaultRetries,
	}, nil
}

// Complete runs one chat completion and returns the trimmed message
// content. Failures, including empty completions, are retried with a
// linear backoff before giving up.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, cfg ChatConfig) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		content, err := c.createCompletion(ctx, systemPrompt, userPrompt, cfg)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.log.WithError(err).WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"model":   cfg.Model,
		}).Warn("LLM 호출 실패")
	}

	return "", fmt.Errorf("llm call failed after %d attempts: %w", c.retries+1, lastErr)
}

// Ping verifies the credential by listing available models.
func (c *Client) Ping(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		return err
	}
	_, err := c.api.ListModels(callCtx)
	return err
}

func (c *Client) createCompletion(ctx context.Context, systemPrompt, userPrompt string, cfg ChatConfig) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: cfg.Temperature,
	}

	c.log.WithFields(map[string]interface{}{
		"model":      cfg.Model,
		"max_tokens": cfg.MaxTokens,
	}).Debug("LLM 요청")

	// Providers disagree on the token cap parameter name. Try
	// max_completion_tokens first, then fall back to max_tokens.
	req.MaxCompletionTokens = cfg.MaxTokens
	resp, err := c.api.CreateChatCompletion(callCtx, req)
	if err != nil && isTokenParamError(err) {
		req.MaxCompletionTokens = 0
		req.MaxTokens = cfg.MaxTokens
		resp, err = c.api.CreateChatCompletion(callCtx, req)
	}
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func isTokenParamError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "max_tokens") || strings.Contains(msg, "max_completion_tokens")
}
