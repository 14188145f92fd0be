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
	"slices"
	"strings"
)

// 📝 textExtensions are the extensions we consider human readable
var textExtensions = map[string]struct{}{
	"txt": {}, "md": {}, "js": {}, "jsx": {}, "ts": {}, "tsx": {}, "json": {},
	"html": {}, "css": {}, "scss": {}, "less": {}, "py": {}, "java": {}, "rb": {},
	"php": {}, "c": {}, "cpp": {}, "h": {}, "hpp": {}, "sql": {}, "yaml": {},
	"yml": {}, "xml": {}, "sh": {}, "bash": {}, "zsh": {}, "env": {},
	"config": {}, "ini": {},
}

// 🔍 Extension returns the lower-cased extension of the last path segment,
// or "" when the segment has no dot or ends with one.
func Extension(path string) string {
	name := path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}

	return strings.ToLower(name[idx+1:])
}

// 🎯 IsTextFile reports whether the file at path is eligible for analysis
func IsTextFile(path string) bool {
	ext := Extension(path)
	if ext == "" {
		return false
	}
	_, ok := textExtensions[ext]
	return ok
}

// TextExtensions returns the allow-list, sorted.
func TextExtensions() []string {
	exts := make([]string, 0, len(textExtensions))
	for ext := range textExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
