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
	"regexp"
	"strings"
)

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// 🔍 ParseRepoURL extracts owner and repo from a url like
// https://github.com/<owner>/<repo>[/...]
func ParseRepoURL(url string) (RepoRef, error) {
	match := repoURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if match == nil {
		return RepoRef{}, &InvalidURLError{URL: url}
	}

	owner := match[1]
	repo := match[2]
	if idx := strings.IndexAny(repo, "?#"); idx >= 0 {
		repo = repo[:idx]
	}
	repo = strings.TrimSuffix(repo, ".git")

	if owner == "" || repo == "" {
		return RepoRef{}, &InvalidURLError{URL: url}
	}

	return RepoRef{Owner: owner, Repo: repo}, nil
}
