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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

type documentDecoder interface {
	Decode(v any) error
}

// 🔧 streamParser reads a single strict document from a streaming format.
// Unknown keys are rejected and an empty file yields defaults.
type streamParser struct {
	format     string
	extensions []string
	decoder    func(r io.Reader) documentDecoder
}

func init() {
	Register(&streamParser{
		format:     "YAML",
		extensions: []string{".yaml", ".yml"},
		decoder: func(r io.Reader) documentDecoder {
			dec := yaml.NewDecoder(r)
			dec.KnownFields(true)
			return dec
		},
	})
	Register(&streamParser{
		format:     "JSON",
		extensions: []string{".json"},
		decoder: func(r io.Reader) documentDecoder {
			dec := json.NewDecoder(r)
			dec.DisallowUnknownFields()
			return dec
		},
	})
}

func hasExtension(filename string, extensions ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	return slices.Contains(extensions, ext)
}

func (p *streamParser) CanParse(filename string) bool {
	return hasExtension(filename, p.extensions...)
}

func (p *streamParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	cfg := &Config{}
	dec := p.decoder(bytes.NewReader(data))

	err := dec.Decode(cfg)
	switch {
	case errors.Is(err, io.EOF):
		zerolog.Ctx(ctx).Debug().Str("format", p.format).Msg("config file is empty, using defaults")
		return cfg, nil
	case err != nil:
		return nil, errors.Errorf("parsing %s: %w", p.format, err)
	}

	// a second document would be silently ignored otherwise
	var rest any
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing %s: expected a single document", p.format)
	}

	return cfg, nil
}
