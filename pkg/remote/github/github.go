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

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/repolens/pkg/remote"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// DefaultBranch is the ref listed when none is configured
const DefaultBranch = "main"

func init() {
	remote.RegisterProvider("github", New)
}

var _ remote.Provider = (*Gateway)(nil)

// 🎯 Gateway implements remote.Provider against the GitHub REST API
type Gateway struct {
	client        *github.Client
	branch        string
	tokenProvided bool
}

// 🏭 New creates a new GitHub provider
func New(ctx context.Context, opts remote.Options) (remote.Provider, error) {
	return NewGateway(ctx, opts)
}

// 🏭 NewGateway creates a gateway, authenticating with opts.Token when set
func NewGateway(ctx context.Context, opts remote.Options) (*Gateway, error) {
	httpClient := opts.HTTPClient
	if opts.Token != "" {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)

	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Errorf("parsing base url: %w", err)
		}
		client.BaseURL = baseURL
	}

	branch := opts.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	return &Gateway{
		client:        client,
		branch:        branch,
		tokenProvided: opts.Token != "",
	}, nil
}

// Name returns the name of the provider
func (g *Gateway) Name() string {
	return "github"
}

// 📊 FetchRepository returns the repository metadata
func (g *Gateway) FetchRepository(ctx context.Context, owner, repo string) (*remote.RepoMetadata, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("owner", owner).Str("repo", repo).Msg("fetching repository metadata")

	r, resp, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, g.translate(resp, err)
	}

	return &remote.RepoMetadata{
		Name:          r.GetName(),
		Description:   r.GetDescription(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		Watchers:      r.GetWatchersCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		CreatedAt:     r.GetCreatedAt().Time,
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		License:       r.GetLicense().GetName(),
	}, nil
}

// 📂 FetchTree returns the recursive listing of the configured branch
func (g *Gateway) FetchTree(ctx context.Context, owner, repo string) ([]remote.TreeEntry, error) {
	entries, _, err := g.fetchTree(ctx, owner, repo)
	return entries, err
}

func (g *Gateway) fetchTree(ctx context.Context, owner, repo string) ([]remote.TreeEntry, bool, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("owner", owner).Str("repo", repo).Str("branch", g.branch).Msg("fetching repository tree")

	tree, resp, err := g.client.Git.GetTree(ctx, owner, repo, g.branch, true)
	if err != nil {
		return nil, false, g.translate(resp, err)
	}

	entries := make([]remote.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entry := remote.TreeEntry{
			Path: e.GetPath(),
			Kind: remote.EntryKind(e.GetType()),
		}
		if entry.IsBlob() {
			entry.ContentURL = e.GetURL()
		}
		if e.Size != nil {
			entry.Size = int64(e.GetSize())
			entry.HasSize = true
		}
		entries = append(entries, entry)
	}

	if tree.GetTruncated() {
		logger.Warn().Str("owner", owner).Str("repo", repo).Int("entries", len(entries)).Msg("tree listing was truncated by the host")
	}

	return entries, tree.GetTruncated(), nil
}

// ⚡ Fetch loads metadata and tree concurrently; both must succeed
func (g *Gateway) Fetch(ctx context.Context, ref remote.RepoRef) (*remote.Snapshot, error) {
	snap := &remote.Snapshot{Ref: ref}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		md, err := g.FetchRepository(egctx, ref.Owner, ref.Repo)
		if err != nil {
			return errors.Errorf("fetching repository %s: %w", ref, err)
		}
		snap.Metadata = md
		return nil
	})
	eg.Go(func() error {
		entries, truncated, err := g.fetchTree(egctx, ref.Owner, ref.Repo)
		if err != nil {
			return errors.Errorf("fetching tree %s: %w", ref, err)
		}
		snap.Entries = entries
		snap.Truncated = truncated
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}

// 📥 FetchBlob returns the base64 content field behind contentURL
func (g *Gateway) FetchBlob(ctx context.Context, contentURL string) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("url", contentURL).Msg("fetching blob")

	if contentURL == "" {
		return "", errors.New("missing content url")
	}

	req, err := g.client.NewRequest(http.MethodGet, contentURL, nil)
	if err != nil {
		return "", errors.Errorf("creating request: %w", err)
	}

	blob := new(github.Blob)
	resp, err := g.client.Do(ctx, req, blob)
	if err != nil {
		return "", errors.Errorf("failed to fetch file: %w", g.translate(resp, err))
	}

	if blob.GetContent() == "" {
		return "", errors.New("no content found in the response")
	}

	return blob.GetContent(), nil
}

// 🔄 translate maps go-github failures onto the remote error taxonomy
func (g *Gateway) translate(resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return g.rateLimitError(resp, err)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &remote.APIError{
			StatusCode: resp.StatusCode,
			Status:     statusLine(resp.Response),
		}
	}

	return err
}

func (g *Gateway) rateLimitError(resp *github.Response, err error) *remote.RateLimitError {
	rle := &remote.RateLimitError{TokenProvided: g.tokenProvided}

	if raw := resp.Header.Get("X-RateLimit-Reset"); raw != "" {
		if secs, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			rle.ResetAt = time.Unix(secs, 0)
			rle.HasReset = true
			return rle
		}
	}

	// go-github answers from its own rate cache without a request, so the header may be absent
	var ghErr *github.RateLimitError
	if errors.As(err, &ghErr) && !ghErr.Rate.Reset.IsZero() {
		rle.ResetAt = ghErr.Rate.Reset.Time
		rle.HasReset = true
	}

	return rle
}

func statusLine(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
