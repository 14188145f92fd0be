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

package analysis

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/pkg/status"
	"github.com/walteh/repolens/pkg/text"
)

// ErrInProgress is returned when another analysis already holds the gate
var ErrInProgress = errors.Base("analysis in progress")

// 📥 ContentFetcher returns the raw base64 content behind a blob URL
type ContentFetcher interface {
	FetchBlob(ctx context.Context, contentURL string) (string, error)
}

// 🤖 Analyzer explains a decoded file
type Analyzer interface {
	Analyze(ctx context.Context, path, content string) (string, error)
}

// 🗃️ Cache maps file paths to their analysis text.
// Only one analysis runs at a time; concurrent requests are rejected.
type Cache struct {
	fetcher  ContentFetcher
	analyzer Analyzer
	tracker  *status.Tracker

	busy atomic.Bool

	mu      sync.RWMutex
	entries map[string]string
}

// 🏭 New creates an empty cache
func New(fetcher ContentFetcher, analyzer Analyzer) *Cache {
	return &Cache{
		fetcher:  fetcher,
		analyzer: analyzer,
		tracker:  status.NewTracker(),
		entries:  make(map[string]string),
	}
}

// 🎯 RequestAnalysis fetches, decodes and analyzes the file at path and
// stores the result. Non-text paths are ignored.
func (c *Cache) RequestAnalysis(ctx context.Context, path, contentURL string) error {
	if !text.IsTextFile(path) {
		return nil
	}

	if !c.busy.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	defer c.busy.Store(false)

	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()
	logger.Debug().Msg("starting analysis")

	c.tracker.Set(path, status.StatusAnalyzing)

	result, err := c.run(ctx, path, contentURL)
	if err != nil {
		c.mu.Lock()
		delete(c.entries, path)
		c.mu.Unlock()
		c.tracker.Fail(path, err)
		logger.Debug().Err(err).Msg("analysis failed")
		return err
	}

	c.mu.Lock()
	c.entries[path] = result
	c.mu.Unlock()
	c.tracker.Set(path, status.StatusAnalyzed)

	logger.Debug().Int("length", len(result)).Msg("analysis stored")
	return nil
}

func (c *Cache) run(ctx context.Context, path, contentURL string) (string, error) {
	raw, err := c.fetcher.FetchBlob(ctx, contentURL)
	if err != nil {
		return "", errors.Errorf("fetching %s: %w", path, err)
	}

	content, err := text.DecodeBase64(raw)
	if err != nil {
		return "", err
	}

	result, err := c.analyzer.Analyze(ctx, path, content)
	if err != nil {
		return "", errors.Errorf("analyzing %s: %w", path, err)
	}
	return result, nil
}

// Get returns the stored analysis for path
func (c *Cache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[path]
	return v, ok
}

// Has reports whether path has been analyzed
func (c *Cache) Has(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Len returns the number of stored analyses
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Status returns the analysis state of path
func (c *Cache) Status(path string) status.Status {
	return c.tracker.Get(path)
}

// Failure returns the last error recorded for path, if any
func (c *Cache) Failure(path string) error {
	info, ok := c.tracker.Info(path)
	if !ok {
		return nil
	}
	return info.Error
}

// Tracked returns every path that has been requested, ordered by path
func (c *Cache) Tracked() []status.FileInfo {
	return c.tracker.List()
}

// InFlight reports whether an analysis currently holds the gate
func (c *Cache) InFlight() bool {
	return c.busy.Load()
}

// 🧹 Reset drops every stored analysis and status
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
	c.tracker.Reset()
}
