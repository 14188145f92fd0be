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
	"fmt"
	"time"
)

// ResetTimeLayout is how rate limit reset times are shown to users
const ResetTimeLayout = "3:04:05 PM"

// ❌ InvalidURLError means the input is not a repository url
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("please enter a valid GitHub repository URL (got %q)", e.URL)
}

// ⏳ RateLimitError is returned when the host answers 403
type RateLimitError struct {
	ResetAt       time.Time
	HasReset      bool
	TokenProvided bool
}

// ResetTime returns the reset time in local time, or "unknown time"
func (e *RateLimitError) ResetTime() string {
	if !e.HasReset {
		return "unknown time"
	}
	return e.ResetAt.Local().Format(ResetTimeLayout)
}

func (e *RateLimitError) Error() string {
	msg := "GitHub API rate limit exceeded. Rate limit will reset at " + e.ResetTime() + "."
	if !e.TokenProvided {
		msg += " Please add a GitHub token to increase the rate limit."
	}
	return msg
}

// 🚫 APIError is any other non-2xx answer from the host
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return "GitHub API error: " + e.Status
}
