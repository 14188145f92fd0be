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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExtension(filename, ".hcl")
}

// envFunc exposes env("NAME") to config files
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "name", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{"env": envFunc},
	}

	// Define HCL schema
	type hclConfig struct {
		GitHub *struct {
			Token   string `hcl:"token,optional"`
			BaseURL string `hcl:"base_url,optional"`
			Branch  string `hcl:"branch,optional"`
		} `hcl:"github,block"`
		OpenAI *struct {
			APIKey      string   `hcl:"api_key,optional"`
			BaseURL     string   `hcl:"base_url,optional"`
			Model       string   `hcl:"model,optional"`
			Temperature *float64 `hcl:"temperature,optional"`
			MaxTokens   int      `hcl:"max_tokens,optional"`
		} `hcl:"openai,block"`
		Analysis *struct {
			MaxChars   int    `hcl:"max_chars,optional"`
			RetryDelay string `hcl:"retry_delay,optional"`
			MaxRetries int    `hcl:"max_retries,optional"`
		} `hcl:"analysis,block"`
		Explorer *struct {
			IgnorePatterns []string `hcl:"ignore_patterns,optional"`
		} `hcl:"explorer,block"`
		HTTPTimeout string `hcl:"http_timeout,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{HTTPTimeout: hclCfg.HTTPTimeout}
	if g := hclCfg.GitHub; g != nil {
		cfg.GitHub = GitHubArgs{Token: g.Token, BaseURL: g.BaseURL, Branch: g.Branch}
	}
	if o := hclCfg.OpenAI; o != nil {
		cfg.OpenAI = OpenAIArgs{
			APIKey:      o.APIKey,
			BaseURL:     o.BaseURL,
			Model:       o.Model,
			Temperature: o.Temperature,
			MaxTokens:   o.MaxTokens,
		}
	}
	if a := hclCfg.Analysis; a != nil {
		cfg.Analysis = AnalysisArgs{MaxChars: a.MaxChars, RetryDelay: a.RetryDelay, MaxRetries: a.MaxRetries}
	}
	if e := hclCfg.Explorer; e != nil {
		cfg.Explorer.IgnorePatterns = e.IgnorePatterns
	}

	return cfg, nil
}
