// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = openai.GPT3Dot5Turbo
	DefaultTemperature = float32(0.2)
	DefaultMaxTokens   = 1000
	DefaultMaxChars    = 5000
	DefaultRetryDelay  = 30 * time.Second
	DefaultMaxRetries  = 1

	// NoAnalysis is returned when the model answers without text
	NoAnalysis = "No analysis returned."

	SystemPrompt = "You are a helpful assistant that performs static analysis of code files and explains what they do."
	userPrompt   = "Analyze the following code file and explain its purpose and functionality:\n\nFile path: %s\n\nCode:\n%s"
)

// 🔧 Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	// Temperature is DefaultTemperature when nil; an explicit 0 is honoured
	Temperature *float32
	MaxTokens   int
	MaxChars    int
	RetryDelay  time.Duration
	// MaxRetries caps rate-limit retries; negative disables retrying
	MaxRetries int
	HTTPClient *http.Client
}

// 🤖 Client explains files through a chat-completion endpoint
type Client struct {
	api         *openai.Client
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	maxChars    int
	retryDelay  time.Duration
	maxRetries  int
}

// 🏭 New creates a client from opts
func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	c := &Client{
		api:         openai.NewClientWithConfig(cfg),
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: DefaultTemperature,
		maxTokens:   opts.MaxTokens,
		maxChars:    opts.MaxChars,
		retryDelay:  opts.RetryDelay,
		maxRetries:  opts.MaxRetries,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if opts.Temperature != nil {
		c.temperature = *opts.Temperature
	}
	if c.maxTokens == 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.maxChars == 0 {
		c.maxChars = DefaultMaxChars
	}
	if c.retryDelay == 0 {
		c.retryDelay = DefaultRetryDelay
	}
	switch {
	case c.maxRetries == 0:
		c.maxRetries = DefaultMaxRetries
	case c.maxRetries < 0:
		c.maxRetries = 0
	}
	return c
}

// HasCredential reports whether an API key is configured
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// ✂️ Truncate returns the first max characters (runes) of content
func Truncate(content string, max int) string {
	if max <= 0 {
		return content
	}
	n := 0
	for i := range content {
		if n == max {
			return content[:i]
		}
		n++
	}
	return content
}

// Prompt builds the user message for path and the truncated content
func (c *Client) Prompt(path, content string) string {
	return fmt.Sprintf(userPrompt, path, Truncate(content, c.maxChars))
}

// 📝 BuildRequest constructs the chat-completion request for a file
func (c *Client) BuildRequest(path, content string) openai.ChatCompletionRequest {
	// go-openai omits a zero temperature from the body, which the server reads as 1
	temperature := c.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: c.Prompt(path, content)},
		},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}
}

// 🎯 Analyze returns the model's explanation of the file at path.
// Rate-limited calls are retried after a fixed delay, at most maxRetries times.
func (c *Client) Analyze(ctx context.Context, path, content string) (string, error) {
	if c.apiKey == "" {
		return "", &MissingCredentialError{}
	}

	logger := zerolog.Ctx(ctx)
	req := c.BuildRequest(path, content)

	for attempt := 0; ; attempt++ {
		logger.Debug().Str("path", path).Str("model", c.model).Int("attempt", attempt).Msg("requesting analysis")

		out, err := c.complete(ctx, req)
		if err == nil {
			return out, nil
		}

		if !IsRateLimited(err) || attempt >= c.maxRetries {
			return "", err
		}

		logger.Warn().Str("path", path).Dur("delay", c.retryDelay).Msg("rate limited, retrying")

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", errors.Errorf("waiting for rate limit: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &AnalysisAPIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &AnalysisAPIError{StatusCode: reqErr.HTTPStatusCode}
		}
		return "", errors.Errorf("calling chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoAnalysis, nil
	}

	return resp.Choices[0].Message.Content, nil
}
