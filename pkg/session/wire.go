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

package session

import (
	"context"
	"net/http"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/pkg/config"
	"github.com/walteh/repolens/pkg/llm"
	"github.com/walteh/repolens/pkg/remote"

	// registers the github provider
	_ "github.com/walteh/repolens/pkg/remote/github"
)

// ProviderName is the repository host every session talks to
const ProviderName = "github"

// 🔌 FromConfig wires a session from loaded configuration
func FromConfig(ctx context.Context, cfg *config.Config, notifier Notifier) (*Session, error) {
	var httpClient *http.Client
	if cfg.Timeout() > 0 {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}

	provider, err := remote.NewProvider(ctx, ProviderName, remote.Options{
		Token:      cfg.GitHub.Token,
		BaseURL:    cfg.GitHub.BaseURL,
		Branch:     cfg.GitHub.Branch,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, errors.Errorf("creating provider: %w", err)
	}

	var temperature *float32
	if cfg.OpenAI.Temperature != nil {
		t := float32(*cfg.OpenAI.Temperature)
		temperature = &t
	}

	analyzer := llm.New(llm.Options{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		MaxChars:    cfg.Analysis.MaxChars,
		RetryDelay:  cfg.Analysis.Delay(),
		MaxRetries:  cfg.Analysis.MaxRetries,
		HTTPClient:  httpClient,
	})

	return New(provider, analyzer, notifier, Options{IgnorePatterns: cfg.Explorer.IgnorePatterns}), nil
}
