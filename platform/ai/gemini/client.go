// Package gemini provides the AI completion client used by the assistant
// endpoints. It wraps the Gemini API with a per-model retry policy
// (exponential backoff on transient failures) and an ordered model
// fallback chain.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"medicare_backend/platform/apperr"
	"medicare_backend/platform/logger"
)

// Config for the completion client.
type Config struct {
	APIKey         string
	Model          string
	FallbackModels []string
	SystemPrompt   string
	Timeout        time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Client calls the Gemini generateContent API for text and image prompts.
type Client struct {
	api    *genai.Client
	config Config
	models []string
	log    *logger.Logger
}

// NewClient creates a completion client. The model chain is the configured
// primary model followed by the fallbacks, deduplicated in order.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.Unauthorized("AI service API key is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to initialize AI client", err)
	}

	return &Client{
		api:    api,
		config: cfg,
		models: buildModelChain(cfg.Model, cfg.FallbackModels),
		log:    log,
	}, nil
}

// GenerateText generates a completion for a text-only prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []*genai.Part{{Text: prompt}})
}

// GenerateWithImage generates a completion for a prompt with inline image data.
func (c *Client) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
	}
	return c.generate(ctx, parts)
}

// generate walks the model fallback chain. Each model gets the full retry
// budget before the next one is tried; only when the whole chain is exhausted
// does the caller see a failure.
func (c *Client) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	var lastErr error

	for i, model := range c.models {
		text, err := c.generateWithModel(ctx, model, parts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if isPermanent(err) {
			break
		}
		c.log.UpstreamError("gemini", "generate", err)

		if i < len(c.models)-1 {
			// Brief pause before switching models, matching upstream etiquette.
			if werr := sleepCtx(ctx, time.Second); werr != nil {
				return "", apperr.Wrap(apperr.KindUnavailable, "AI request cancelled", werr)
			}
		}
	}

	return "", classify(lastErr)
}

func (c *Client) generateWithModel(ctx context.Context, model string, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	var config *genai.GenerateContentConfig
	if c.config.SystemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: c.config.SystemPrompt}}},
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base delay doubling per attempt.
			delay := c.config.RetryBaseDelay << (attempt - 1)
			if err := sleepCtx(ctx, delay); err != nil {
				return "", lastErr
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		resp, err := c.api.Models.GenerateContent(callCtx, model, contents, config)
		cancel()

		if err == nil {
			text := resp.Text()
			if text == "" {
				lastErr = apperr.Upstream("AI service returned an empty completion")
				continue
			}
			return text, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

// classify converts the final upstream error into the typed failure the
// HTTP layer reports.
func classify(err error) error {
	if err == nil {
		return apperr.Unavailable("AI service did not produce a response")
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if isPermanent(err) {
		return apperr.Wrap(apperr.KindUnauthorized, "AI service rejected the configured credentials", err)
	}

	return apperr.Wrap(apperr.KindUnavailable, "The AI service is currently busy. Please try again in a few moments.", err)
}

// isRetryable reports whether a failure is transient: rate limits, overload,
// server errors, and timeouts.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		case 400, 401, 403, 404:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"overloaded", "quota", "rate limit", "429", "503", "timeout", "connection reset", "eof"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// isPermanent reports whether a failure should stop the fallback chain
// entirely, such as rejected credentials.
func isPermanent(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") || strings.Contains(msg, "permission denied")
}

func buildModelChain(primary string, fallbacks []string) []string {
	chain := make([]string, 0, len(fallbacks)+1)
	seen := make(map[string]bool)
	for _, model := range append([]string{primary}, fallbacks...) {
		model = strings.TrimSpace(model)
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true
		chain = append(chain, model)
	}
	return chain
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
