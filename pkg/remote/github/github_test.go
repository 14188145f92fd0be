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
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/repolens/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const repoJSON = `{
	"name": "widgets",
	"description": "all the widgets",
	"stargazers_count": 42,
	"forks_count": 7,
	"watchers_count": 40,
	"open_issues_count": 3,
	"created_at": "2020-01-02T03:04:05Z",
	"default_branch": "main",
	"language": "JavaScript",
	"license": {"name": "MIT License"}
}`

func treeJSON(base string) string {
	return fmt.Sprintf(`{
	"sha": "abc",
	"truncated": false,
	"tree": [
		{"path": "src", "type": "tree", "url": "%[1]s/repos/acme/widgets/git/trees/def"},
		{"path": "src/index.js", "type": "blob", "size": 12, "url": "%[1]s/repos/acme/widgets/git/blobs/123"}
	]
}`, base)
}

type fakeHost struct {
	mu      sync.Mutex
	auth    []string
	handler http.HandlerFunc
}

func newFakeHost(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *fakeHost) {
	t.Helper()
	fh := &fakeHost{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		h := h
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			fh.mu.Lock()
			fh.auth = append(fh.auth, r.Header.Get("Authorization"))
			fh.mu.Unlock()
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, fh
}

func testContext() context.Context {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled).WithContext(context.Background())
}

func TestGateway_Fetch(t *testing.T) {
	var base string
	srv, host := newFakeHost(t, map[string]http.HandlerFunc{
		"/repos/acme/widgets": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, repoJSON)
		},
		"/repos/acme/widgets/git/trees/main": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("recursive"), "tree should be recursive")
			fmt.Fprint(w, treeJSON(base))
		},
	})
	base = srv.URL

	ctx := testContext()
	g, err := NewGateway(ctx, remote.Options{BaseURL: srv.URL, Token: "secret"})
	require.NoError(t, err, "creating gateway should succeed")

	snap, err := g.Fetch(ctx, remote.RepoRef{Owner: "acme", Repo: "widgets"})
	require.NoError(t, err, "fetch should succeed")

	require.NotNil(t, snap.Metadata, "metadata should be set")
	assert.Equal(t, "widgets", snap.Metadata.Name)
	assert.Equal(t, "all the widgets", snap.Metadata.Description)
	assert.Equal(t, 42, snap.Metadata.Stars)
	assert.Equal(t, 7, snap.Metadata.Forks)
	assert.Equal(t, 40, snap.Metadata.Watchers)
	assert.Equal(t, 3, snap.Metadata.OpenIssues)
	assert.Equal(t, "main", snap.Metadata.DefaultBranch)
	assert.Equal(t, "JavaScript", snap.Metadata.Language)
	assert.Equal(t, "MIT License", snap.Metadata.License)
	assert.True(t, snap.Metadata.CreatedAt.Equal(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)), "created at should match")

	require.Len(t, snap.Entries, 2, "should list both entries")
	assert.Equal(t, remote.KindTree, snap.Entries[0].Kind)
	assert.Empty(t, snap.Entries[0].ContentURL, "trees carry no content url")
	assert.Equal(t, "src/index.js", snap.Entries[1].Path)
	assert.Equal(t, remote.KindBlob, snap.Entries[1].Kind)
	assert.Equal(t, srv.URL+"/repos/acme/widgets/git/blobs/123", snap.Entries[1].ContentURL)
	assert.Equal(t, int64(12), snap.Entries[1].Size)
	assert.True(t, snap.Entries[1].HasSize)
	assert.False(t, snap.Truncated)

	host.mu.Lock()
	defer host.mu.Unlock()
	require.Len(t, host.auth, 2, "both requests should be made")
	for _, a := range host.auth {
		assert.Equal(t, "Bearer secret", a, "token should be sent as bearer")
	}
}

func TestGateway_NoTokenSendsNoAuth(t *testing.T) {
	srv, host := newFakeHost(t, map[string]http.HandlerFunc{
		"/repos/acme/widgets": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, repoJSON)
		},
	})

	ctx := testContext()
	g, err := NewGateway(ctx, remote.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	md, err := g.FetchRepository(ctx, "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, "widgets", md.Name)

	host.mu.Lock()
	defer host.mu.Unlock()
	require.Len(t, host.auth, 1)
	assert.Empty(t, host.auth[0], "no authorization header without a token")
}

func TestGateway_Errors(t *testing.T) {
	const reset = int64(1700000000)

	tests := []struct {
		name        string
		token       string
		handler     http.HandlerFunc
		check       func(t *testing.T, err error)
		errContains string
	}{
		{
			name: "rate_limited_without_token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset))
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			},
			errContains: "Please add a GitHub token",
			check: func(t *testing.T, err error) {
				var rle *remote.RateLimitError
				require.True(t, errors.As(err, &rle), "error should be a RateLimitError")
				assert.True(t, rle.HasReset, "reset should be parsed")
				assert.Equal(t, time.Unix(reset, 0).Local().Format(remote.ResetTimeLayout), rle.ResetTime())
				assert.False(t, rle.TokenProvided)
			},
		},
		{
			name:  "rate_limited_with_token",
			token: "secret",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset))
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "forbidden"}`)
			},
			errContains: "Rate limit will reset at " + time.Unix(reset, 0).Local().Format(remote.ResetTimeLayout),
			check: func(t *testing.T, err error) {
				var rle *remote.RateLimitError
				require.True(t, errors.As(err, &rle), "error should be a RateLimitError")
				assert.True(t, rle.TokenProvided)
				assert.NotContains(t, err.Error(), "Please add a GitHub token")
			},
		},
		{
			name: "forbidden_without_reset_header",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "forbidden"}`)
			},
			errContains: "unknown time",
		},
		{
			name: "not_found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			errContains: "GitHub API error: 404 Not Found",
			check: func(t *testing.T, err error) {
				var apiErr *remote.APIError
				require.True(t, errors.As(err, &apiErr), "error should be an APIError")
				assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
			},
		},
		{
			name: "server_error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			errContains: "500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newFakeHost(t, map[string]http.HandlerFunc{
				"/repos/acme/widgets": tt.handler,
			})

			ctx := testContext()
			g, err := NewGateway(ctx, remote.Options{BaseURL: srv.URL, Token: tt.token})
			require.NoError(t, err)

			_, err = g.FetchRepository(ctx, "acme", "widgets")
			require.Error(t, err, "FetchRepository should fail")
			assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestGateway_FetchFailsWhenEitherFails(t *testing.T) {
	srv, _ := newFakeHost(t, map[string]http.HandlerFunc{
		"/repos/acme/widgets": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, repoJSON)
		},
		"/repos/acme/widgets/git/trees/main": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		},
	})

	ctx := testContext()
	g, err := NewGateway(ctx, remote.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	snap, err := g.Fetch(ctx, remote.RepoRef{Owner: "acme", Repo: "widgets"})
	require.Error(t, err, "fetch should fail when the tree fails")
	assert.Nil(t, snap, "no partial snapshot")

	var apiErr *remote.APIError
	assert.True(t, errors.As(err, &apiErr), "first error should be surfaced")
}

func TestGateway_CustomBranch(t *testing.T) {
	var base string
	srv, _ := newFakeHost(t, map[string]http.HandlerFunc{
		"/repos/acme/widgets/git/trees/develop": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, treeJSON(base))
		},
	})
	base = srv.URL

	ctx := testContext()
	g, err := NewGateway(ctx, remote.Options{BaseURL: srv.URL, Branch: "develop"})
	require.NoError(t, err)

	entries, err := g.FetchTree(ctx, "acme", "widgets")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGateway_FetchBlob(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		status      int
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:   "content",
			body:   `{"sha": "123", "encoding": "base64", "content": "Y29uc29sZS5sb2coMSk=\n"}`,
			status: http.StatusOK,
			want:   "Y29uc29sZS5sb2coMSk=\n",
		},
		{
			name:        "empty_content",
			body:        `{"sha": "123"}`,
			status:      http.StatusOK,
			wantErr:     true,
			errContains: "no content found in the response",
		},
		{
			name:        "missing",
			body:        `{"message": "Not Found"}`,
			status:      http.StatusNotFound,
			wantErr:     true,
			errContains: "failed to fetch file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newFakeHost(t, map[string]http.HandlerFunc{
				"/repos/acme/widgets/git/blobs/123": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					fmt.Fprint(w, tt.body)
				},
			})

			ctx := testContext()
			g, err := NewGateway(ctx, remote.Options{BaseURL: srv.URL})
			require.NoError(t, err)

			got, err := g.FetchBlob(ctx, srv.URL+"/repos/acme/widgets/git/blobs/123")
			if tt.wantErr {
				require.Error(t, err, "FetchBlob should fail")
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err, "FetchBlob should succeed")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry(t *testing.T) {
	assert.Contains(t, remote.ProviderNames(), "github", "github should self-register")

	p, err := remote.NewProvider(testContext(), "github", remote.Options{})
	require.NoError(t, err)
	assert.Equal(t, "github", p.Name())

	_, err = remote.NewProvider(testContext(), "gitlab", remote.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider gitlab not found")
}
