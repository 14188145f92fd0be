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

package remote

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🏭 Factory creates a provider from options
type Factory func(ctx context.Context, opts Options) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// 📝 RegisterProvider registers a provider factory under name
func RegisterProvider(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// 🎯 NewProvider builds the provider registered under name
func NewProvider(ctx context.Context, name string, opts Options) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("provider %s not found, options: %s", name, strings.Join(ProviderNames(), ", "))
	}
	return factory(ctx, opts)
}

// ProviderNames returns the registered provider names, sorted
func ProviderNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// 🔧 Options configures a provider
type Options struct {
	// Token is an optional bearer token; an empty token only lowers the rate limit
	Token string
	// BaseURL overrides the API root (e.g. for tests or enterprise hosts)
	BaseURL string
	// Branch is the ref whose tree gets listed, "main" when empty
	Branch string
	// HTTPClient is the base transport, http.DefaultClient when nil
	HTTPClient *http.Client
}

// Provider is the primary interface for reading a hosted repository
type Provider interface {
	// Name returns the name of the provider (e.g. "github")
	Name() string
	// FetchRepository returns the repository metadata
	FetchRepository(ctx context.Context, owner, repo string) (*RepoMetadata, error)
	// FetchTree returns the flat recursive listing of the configured branch
	FetchTree(ctx context.Context, owner, repo string) ([]TreeEntry, error)
	// Fetch runs FetchRepository and FetchTree concurrently
	Fetch(ctx context.Context, ref RepoRef) (*Snapshot, error)
	// FetchBlob returns the raw base64 content behind a tree entry's content url
	FetchBlob(ctx context.Context, contentURL string) (string, error)
}

// 📦 RepoRef identifies a repository
type RepoRef struct {
	Owner string
	Repo  string
}

// String returns "owner/repo"
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// 📊 RepoMetadata is a read-only snapshot of repository details
type RepoMetadata struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Watchers      int       `json:"watchers_count"`
	OpenIssues    int       `json:"open_issues_count"`
	CreatedAt     time.Time `json:"created_at"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	License       string    `json:"license"`
}

// LicenseOrDefault returns the license name or "Not specified"
func (m *RepoMetadata) LicenseOrDefault() string {
	if m.License == "" {
		return "Not specified"
	}
	return m.License
}

// EntryKind is the git object type of a tree entry
type EntryKind string

const (
	KindBlob EntryKind = "blob"
	KindTree EntryKind = "tree"
)

// 📄 TreeEntry is one record of the flat recursive listing
type TreeEntry struct {
	Path       string    // slash separated, unique within the listing
	Kind       EntryKind // blob or tree
	ContentURL string    // blob api url, empty for trees
	Size       int64
	HasSize    bool
}

// IsBlob reports whether the entry is a file
func (e TreeEntry) IsBlob() bool {
	return e.Kind == KindBlob
}

// 📸 Snapshot is the result of a single gateway call
type Snapshot struct {
	Ref      RepoRef
	Metadata *RepoMetadata
	Entries  []TreeEntry
	// Truncated is set when the host cut the recursive listing short
	Truncated bool
}
