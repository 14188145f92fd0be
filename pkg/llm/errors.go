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

package llm

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔑 MissingCredentialError blocks every analysis until a key is configured
type MissingCredentialError struct{}

func (e *MissingCredentialError) Error() string {
	return "OPENAI_API_KEY is not configured"
}

// ❌ AnalysisAPIError is a non-2xx answer from the completion endpoint
type AnalysisAPIError struct {
	StatusCode int
	Message    string
}

func (e *AnalysisAPIError) Error() string {
	if e.Message == "" {
		return "Failed to analyze file"
	}
	return e.Message
}

// IsRateLimited reports whether err carries a rate limit message
func IsRateLimited(err error) bool {
	var apiErr *AnalysisAPIError
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Error(), "Rate limit")
	}
	return err != nil && strings.Contains(err.Error(), "Rate limit")
}
