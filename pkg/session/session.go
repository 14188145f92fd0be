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
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/pkg/analysis"
	"github.com/walteh/repolens/pkg/log"
	"github.com/walteh/repolens/pkg/remote"
	"github.com/walteh/repolens/pkg/status"
	"github.com/walteh/repolens/pkg/text"
	"github.com/walteh/repolens/pkg/tree"
)

// 📣 Notifier shows notices to the user
type Notifier interface {
	Notify(ctx context.Context, n log.Notice)
}

// 🤖 Analyzer explains files and knows whether it can run at all
type Analyzer interface {
	analysis.Analyzer
	HasCredential() bool
}

// Outcome is what a file click ended up doing
type Outcome int

const (
	OutcomeIgnored       Outcome = iota // non-text or unknown path
	OutcomeToggled                      // existing analysis shown or hidden
	OutcomeAnalyzed                     // new analysis stored
	OutcomeRejected                     // another analysis was running
	OutcomeFailed                       // analysis attempted and failed
	OutcomeNotConfigured                // no analysis credential
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeToggled:
		return "toggled"
	case OutcomeAnalyzed:
		return "analyzed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	case OutcomeNotConfigured:
		return "not_configured"
	default:
		return "ignored"
	}
}

// 🔧 Options tunes a Session
type Options struct {
	// IgnorePatterns are doublestar globs matched against entry paths before the tree is built
	IgnorePatterns []string
}

// 🧭 Session is the state behind one exploring user: the loaded repository,
// its tree, what is expanded and which files have been analyzed.
type Session struct {
	provider remote.Provider
	analyzer Analyzer
	notifier Notifier
	ignore   []string

	cache *analysis.Cache

	mu        sync.RWMutex
	snapshot  *remote.Snapshot
	root      *tree.Folder
	expansion *tree.Expansion
}

// 🏭 New creates a session with nothing loaded
func New(provider remote.Provider, analyzer Analyzer, notifier Notifier, opts Options) *Session {
	return &Session{
		provider:  provider,
		analyzer:  analyzer,
		notifier:  notifier,
		ignore:    opts.IgnorePatterns,
		cache:     analysis.New(provider, analyzer),
		expansion: tree.NewExpansion(),
	}
}

// 🔍 Search loads the repository behind url, replacing whatever was loaded.
// Expansion state and analyses from the previous repository are dropped.
func (s *Session) Search(ctx context.Context, url string) error {
	logger := zerolog.Ctx(ctx)

	snapshot, err := s.search(ctx, url)
	if err != nil {
		logger.Debug().Err(err).Str("url", url).Msg("search failed")
		s.mu.Lock()
		s.snapshot = nil
		s.root = nil
		s.expansion = tree.NewExpansion()
		s.mu.Unlock()
		s.cache.Reset()
		s.notify(ctx, log.Notice{Level: log.LevelError, Title: "Error analyzing repository", Message: err.Error()})
		return err
	}

	root := tree.Build(s.filter(snapshot.Entries))

	s.mu.Lock()
	s.snapshot = snapshot
	s.root = root
	s.expansion = tree.NewExpansion()
	s.mu.Unlock()
	s.cache.Reset()

	logger.Debug().Str("repo", snapshot.Ref.String()).Int("files", root.CountFiles()).Msg("repository loaded")

	s.notify(ctx, log.Notice{
		Level:   log.LevelSuccess,
		Title:   "Repository analyzed successfully",
		Message: "You can now explore the repository structure and analysis.",
	})
	return nil
}

func (s *Session) search(ctx context.Context, url string) (*remote.Snapshot, error) {
	ref, err := remote.ParseRepoURL(url)
	if err != nil {
		return nil, err
	}
	return s.provider.Fetch(ctx, ref)
}

func (s *Session) filter(entries []remote.TreeEntry) []remote.TreeEntry {
	if len(s.ignore) == 0 {
		return entries
	}
	out := make([]remote.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if !s.ignored(e.Path) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Session) ignored(path string) bool {
	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// 📂 ToggleFolder opens or closes the folder at path and reports whether it is open
func (s *Session) ToggleFolder(path string) bool {
	s.mu.RLock()
	exp := s.expansion
	s.mu.RUnlock()
	return exp.ToggleFolder(path)
}

// 🖱️ ClickFile acts on a file row. An analyzed file is shown or hidden;
// otherwise an analysis is requested. Failures surface as notices and
// the returned error; the session stays usable either way.
func (s *Session) ClickFile(ctx context.Context, path string) (Outcome, error) {
	if !text.IsTextFile(path) {
		return OutcomeIgnored, nil
	}

	s.mu.RLock()
	root, exp := s.root, s.expansion
	s.mu.RUnlock()

	if root == nil {
		return OutcomeIgnored, nil
	}
	file, ok := root.LookupFile(path)
	if !ok {
		return OutcomeIgnored, nil
	}

	if s.cache.Has(path) {
		exp.ToggleFile(path)
		return OutcomeToggled, nil
	}

	if !s.analyzer.HasCredential() {
		s.notify(ctx, log.Notice{
			Level:   log.LevelError,
			Title:   "Configuration Error",
			Message: "OPENAI_API_KEY is not configured. Please check your configuration.",
		})
		return OutcomeNotConfigured, nil
	}

	err := s.cache.RequestAnalysis(ctx, path, file.Entry.ContentURL)
	switch {
	case err == nil:
		s.notify(ctx, log.Notice{Level: log.LevelSuccess, Title: "Analysis complete", Message: "Successfully analyzed " + path})
		return OutcomeAnalyzed, nil
	case errors.Is(err, analysis.ErrInProgress):
		s.notify(ctx, log.Notice{Level: log.LevelInfo, Title: "Analysis in Progress", Message: "Please wait for the current analysis to complete"})
		return OutcomeRejected, err
	default:
		msg := err.Error()
		if msg == "" {
			msg = "Failed to analyze the file"
		}
		s.notify(ctx, log.Notice{Level: log.LevelError, Title: "Analysis failed", Message: msg})
		return OutcomeFailed, err
	}
}

func (s *Session) notify(ctx context.Context, n log.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

// Metadata returns the loaded repository metadata, nil before a successful search
func (s *Session) Metadata() *remote.RepoMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Metadata
}

// Snapshot returns everything the last successful search fetched
func (s *Session) Snapshot() *remote.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Tree returns the root folder, nil before a successful search
func (s *Session) Tree() *tree.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Expansion returns the current expansion state
func (s *Session) Expansion() *tree.Expansion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expansion
}

// Analysis returns the stored analysis for path
func (s *Session) Analysis(path string) (string, bool) {
	return s.cache.Get(path)
}

// Status returns the analysis state of path
func (s *Session) Status(path string) status.Status {
	return s.cache.Status(path)
}

// Tracked lists the state of every file analysis was requested for
func (s *Session) Tracked() []status.FileInfo {
	return s.cache.Tracked()
}

// Cache exposes the analysis cache
func (s *Session) Cache() *analysis.Cache {
	return s.cache
}
