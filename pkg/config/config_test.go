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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GITHUB_TOKEN", "OPENAI_API_KEY", "OPENAI_BASE_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		env         map[string]string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "full_yaml",
			file: "config.yaml",
			config: `
github:
  token: gh-file
  base_url: https://ghe.example.com/api/v3/
  branch: develop
openai:
  api_key: sk-file
  model: gpt-4o-mini
  temperature: 0.5
  max_tokens: 500
analysis:
  max_chars: 2000
  retry_delay: 5s
  max_retries: 3
explorer:
  ignore_patterns:
    - "**/node_modules/**"
    - "*.lock"
http_timeout: 20s
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gh-file", cfg.GitHub.Token, "token should match")
				assert.Equal(t, "develop", cfg.GitHub.Branch, "branch should match")
				assert.Equal(t, "sk-file", cfg.OpenAI.APIKey, "api key should match")
				assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model, "model should match")
				require.NotNil(t, cfg.OpenAI.Temperature)
				assert.InDelta(t, 0.5, *cfg.OpenAI.Temperature, 1e-9)
				assert.Equal(t, 500, cfg.OpenAI.MaxTokens)
				assert.Equal(t, 2000, cfg.Analysis.MaxChars)
				assert.Equal(t, 5*time.Second, cfg.Analysis.Delay())
				assert.Equal(t, 3, cfg.Analysis.MaxRetries)
				assert.Len(t, cfg.Explorer.IgnorePatterns, 2)
				assert.Equal(t, 20*time.Second, cfg.Timeout())
				assert.NotEmpty(t, cfg.Location())
			},
		},
		{
			name:   "defaults_from_empty_yaml",
			file:   "config.yml",
			config: "{}\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultBranch, cfg.GitHub.Branch, "branch should default")
				assert.Equal(t, DefaultModel, cfg.OpenAI.Model)
				require.NotNil(t, cfg.OpenAI.Temperature, "temperature should default")
				assert.InDelta(t, DefaultTemperature, *cfg.OpenAI.Temperature, 1e-9)
				assert.Equal(t, DefaultMaxTokens, cfg.OpenAI.MaxTokens)
				assert.Equal(t, DefaultMaxChars, cfg.Analysis.MaxChars)
				assert.Equal(t, 30*time.Second, cfg.Analysis.Delay())
				assert.Equal(t, DefaultMaxRetries, cfg.Analysis.MaxRetries)
				assert.Zero(t, cfg.Timeout())
			},
		},
		{
			name: "hcl_with_env_function",
			file: "config.hcl",
			config: `
github {
  branch = "trunk"
}
openai {
  api_key = env("REPOLENS_TEST_KEY")
  max_tokens = 200
}
explorer {
  ignore_patterns = ["vendor/**"]
}
`,
			env: map[string]string{"REPOLENS_TEST_KEY": "sk-from-hcl"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "trunk", cfg.GitHub.Branch)
				assert.Equal(t, "sk-from-hcl", cfg.OpenAI.APIKey)
				assert.Equal(t, 200, cfg.OpenAI.MaxTokens)
				assert.Equal(t, []string{"vendor/**"}, cfg.Explorer.IgnorePatterns)
			},
		},
		{
			name:   "json",
			file:   "config.json",
			config: `{"github": {"branch": "master"}, "analysis": {"max_retries": -1}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "master", cfg.GitHub.Branch)
				assert.Equal(t, -1, cfg.Analysis.MaxRetries, "negative retries disable retrying")
			},
		},
		{
			name: "env_overrides_file",
			file: "config.yaml",
			config: `
github:
  token: gh-file
openai:
  api_key: sk-file
`,
			env: map[string]string{
				"GITHUB_TOKEN":    "gh-env",
				"OPENAI_API_KEY":  "sk-env",
				"OPENAI_BASE_URL": "http://localhost:8080/v1",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gh-env", cfg.GitHub.Token)
				assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
				assert.Equal(t, "http://localhost:8080/v1", cfg.OpenAI.BaseURL)
			},
		},
		{
			name:   "yaml_zero_temperature_is_kept",
			file:   "config.yaml",
			config: "openai:\n  temperature: 0\n",
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.OpenAI.Temperature)
				assert.Zero(t, *cfg.OpenAI.Temperature, "an explicit 0 should not be replaced by the default")
			},
		},
		{
			name:   "hcl_zero_temperature_is_kept",
			file:   "config.hcl",
			config: "openai {\n  temperature = 0\n}\n",
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.OpenAI.Temperature)
				assert.Zero(t, *cfg.OpenAI.Temperature, "an explicit 0 should not be replaced by the default")
			},
		},
		{
			name:        "negative_temperature",
			file:        "config.json",
			config:      `{"openai": {"temperature": -1}}`,
			wantErr:     true,
			errContains: "openai.temperature must not be negative",
		},
		{
			name:   "empty_yaml_uses_defaults",
			file:   "config.yaml",
			config: "\n\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultBranch, cfg.GitHub.Branch)
				assert.Equal(t, DefaultMaxChars, cfg.Analysis.MaxChars)
			},
		},
		{
			name:   "empty_json_uses_defaults",
			file:   "config.json",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultModel, cfg.OpenAI.Model)
			},
		},
		{
			name:   "uppercase_extension",
			file:   "config.YML",
			config: "github:\n  branch: release\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "release", cfg.GitHub.Branch)
			},
		},
		{
			name:        "multiple_yaml_documents",
			file:        "config.yaml",
			config:      "github:\n  branch: a\n---\ngithub:\n  branch: b\n",
			wantErr:     true,
			errContains: "parsing YAML: expected a single document",
		},
		{
			name:        "trailing_json_value",
			file:        "config.json",
			config:      `{"github": {"branch": "a"}} {"github": {"branch": "b"}}`,
			wantErr:     true,
			errContains: "parsing JSON: expected a single document",
		},
		{
			name:        "unknown_yaml_field",
			file:        "config.yaml",
			config:      "destination: /tmp\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			file:        "config.json",
			config:      `{"provider": {}}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "negative_max_chars",
			file:        "config.yaml",
			config:      "analysis:\n  max_chars: -5\n",
			wantErr:     true,
			errContains: "analysis.max_chars must not be negative",
		},
		{
			name:        "bad_retry_delay",
			file:        "config.yaml",
			config:      "analysis:\n  retry_delay: soon\n",
			wantErr:     true,
			errContains: "analysis.retry_delay",
		},
		{
			name:        "bad_ignore_pattern",
			file:        "config.yaml",
			config:      "explorer:\n  ignore_patterns: [\"[unclosed\"]\n",
			wantErr:     true,
			errContains: "invalid pattern",
		},
		{
			name:        "no_parser",
			file:        "config.toml",
			config:      "x = 1",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	ctx := zerolog.New(os.Stderr).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, tt.file)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err, "missing file should not be an error")
	assert.Equal(t, DefaultBranch, cfg.GitHub.Branch)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Empty(t, cfg.Location())

	cfg, err = Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.OpenAI.Model)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Discover(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repolens.hcl"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repolens.yaml"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, ".repolens.yaml"), Discover(dir), "yaml wins over hcl")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "github@main model=gpt-3.5-turbo max_chars=5000 retries=1", cfg.String())
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "yaml", filename: ".repolens.yaml", want: true},
		{name: "yml_upper", filename: "CONFIG.YML", want: true},
		{name: "json", filename: "/etc/repolens.json", want: true},
		{name: "hcl", filename: ".repolens.hcl", want: true},
		{name: "toml", filename: "repolens.toml", want: false},
		{name: "suffix_without_dot", filename: "notyaml", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetParser(tt.filename) != nil)
		})
	}
}
