// Package engine wraps an OpenAI-compatible chat-completions endpoint,
// typically a locally hosted model server such as LM Studio.
package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUnreachable is returned when the model server cannot be reached or
// does not answer within the configured timeout.
var ErrUnreachable = errors.New("reasoning engine unreachable")

const maxRetries = 3

// Options configure generation.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client calls a chat-completions endpoint.
type Client struct {
	api     *openai.Client
	opts    Options
	backoff time.Duration
}

// New builds a Client against baseURL (e.g. http://127.0.0.1:1234/v1).
// Local model servers ignore the API key, so any placeholder works.
func New(baseURL string, opts Options) *Client {
	cfg := openai.DefaultConfig("lm-studio")
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{api: openai.NewClientWithConfig(cfg), opts: opts, backoff: time.Second}
}

// Complete sends a single-turn user prompt and returns the generated text.
// Transient failures are retried with exponential backoff; connection and
// timeout failures after the last attempt surface as ErrUnreachable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) && apiErr.HTTPStatusCode < 500 {
				// The server answered; retrying the same request won't help.
				return "", err
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("engine returned no choices")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", errors.Join(ErrUnreachable, lastErr)
}
