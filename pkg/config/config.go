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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔧 Defaults
const (
	DefaultBranch      = "main"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1000
	DefaultMaxChars    = 5000
	DefaultRetryDelay  = "30s"
	DefaultMaxRetries  = 1
)

// DiscoveryNames are the files Discover looks for, in order
var DiscoveryNames = []string{".repolens.yaml", ".repolens.yml", ".repolens.hcl", ".repolens.json"}

// 🐙 GitHubArgs configures the repository host
type GitHubArgs struct {
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Branch  string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// 🤖 OpenAIArgs configures the chat-completion endpoint
type OpenAIArgs struct {
	APIKey      string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	// Temperature is a pointer so an explicit 0 survives defaulting
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// 🔬 AnalysisArgs configures file analysis
type AnalysisArgs struct {
	MaxChars   int    `json:"max_chars,omitempty" yaml:"max_chars,omitempty"`
	RetryDelay string `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
	// MaxRetries caps rate-limit retries; negative disables retrying
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	retryDelay time.Duration
}

// Delay returns the parsed retry delay
func (a AnalysisArgs) Delay() time.Duration {
	return a.retryDelay
}

// 🌳 ExplorerArgs configures tree presentation
type ExplorerArgs struct {
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"` // doublestar globs dropped before the tree is built
}

// 📚 Config represents the complete configuration
type Config struct {
	GitHub      GitHubArgs   `json:"github" yaml:"github"`
	OpenAI      OpenAIArgs   `json:"openai" yaml:"openai"`
	Analysis    AnalysisArgs `json:"analysis" yaml:"analysis"`
	Explorer    ExplorerArgs `json:"explorer" yaml:"explorer"`
	HTTPTimeout string       `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty"`

	location    string
	httpTimeout time.Duration
}

// Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Location returns the file the config was read from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// Timeout returns the parsed HTTP timeout, zero meaning none
func (cfg *Config) Timeout() time.Duration {
	return cfg.httpTimeout
}

// 🔍 Discover returns the first known config file in dir, or ""
func Discover(dir string) string {
	for _, name := range DiscoveryNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// 🎯 Load loads the configuration from a file, applies environment
// overrides and validates it. An empty or missing path yields defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Debug().Str("path", path).Msg("config file not found, using defaults")
		case err != nil:
			return nil, errors.Errorf("reading config file: %w", err)
		default:
			p := GetParser(path)
			if p == nil {
				return nil, errors.Errorf("no parser found for file: %s", path)
			}
			cfg, err = p.Parse(ctx, data)
			if err != nil {
				return nil, errors.Errorf("parsing config: %w", err)
			}
			cfg.location = path
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🌍 ApplyEnv overrides credentials and endpoints from the environment
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("GITHUB_TOKEN"); ok && v != "" {
		cfg.GitHub.Token = v
	}
	if v, ok := lookup("OPENAI_API_KEY"); ok && v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v, ok := lookup("OPENAI_BASE_URL"); ok && v != "" {
		cfg.OpenAI.BaseURL = v
	}
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.GitHub.Branch == "" {
		cfg.GitHub.Branch = DefaultBranch
	}

	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultModel
	}
	if cfg.OpenAI.Temperature == nil {
		t := float64(DefaultTemperature)
		cfg.OpenAI.Temperature = &t
	}
	if *cfg.OpenAI.Temperature < 0 {
		return errors.Errorf("openai.temperature must not be negative")
	}
	if cfg.OpenAI.MaxTokens < 0 {
		return errors.Errorf("openai.max_tokens must not be negative")
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = DefaultMaxTokens
	}

	if cfg.Analysis.MaxChars < 0 {
		return errors.Errorf("analysis.max_chars must not be negative")
	}
	if cfg.Analysis.MaxChars == 0 {
		cfg.Analysis.MaxChars = DefaultMaxChars
	}
	if cfg.Analysis.RetryDelay == "" {
		cfg.Analysis.RetryDelay = DefaultRetryDelay
	}
	delay, err := time.ParseDuration(cfg.Analysis.RetryDelay)
	if err != nil {
		return errors.Errorf("analysis.retry_delay: %w", err)
	}
	if delay < 0 {
		return errors.Errorf("analysis.retry_delay must not be negative")
	}
	cfg.Analysis.retryDelay = delay
	if cfg.Analysis.MaxRetries == 0 {
		cfg.Analysis.MaxRetries = DefaultMaxRetries
	}

	for _, pattern := range cfg.Explorer.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("explorer.ignore_patterns: invalid pattern %q", pattern)
		}
	}

	if cfg.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(cfg.HTTPTimeout)
		if err != nil {
			return errors.Errorf("http_timeout: %w", err)
		}
		if timeout < 0 {
			return errors.Errorf("http_timeout must not be negative")
		}
		cfg.httpTimeout = timeout
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("github@%s model=%s max_chars=%d retries=%d",
		cfg.GitHub.Branch, cfg.OpenAI.Model, cfg.Analysis.MaxChars, cfg.Analysis.MaxRetries)
}
