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

package text

import (
	"encoding/base64"
	"strings"
	"unicode"
)

// ❌ EncodingError is returned when file content is not valid base64
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "invalid file content encoding: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// 🔓 DecodeBase64 strips all whitespace from raw and decodes it with the
// standard base64 alphabet and padding rules.
func DecodeBase64(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", &EncodingError{Err: err}
	}

	return string(data), nil
}
