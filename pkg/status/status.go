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

package status

import (
	"sort"
	"sync"
	"time"
)

// 📊 Status is the analysis state of a single file
type Status int

const (
	StatusNone      Status = iota // never attempted
	StatusAnalyzing               // request in flight
	StatusAnalyzed                // result cached
	StatusFailed                  // last attempt failed
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusAnalyzing:
		return "analyzing"
	case StatusAnalyzed:
		return "analyzed"
	case StatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// 📄 FileInfo is what the tracker knows about a path
type FileInfo struct {
	Path      string
	Status    Status
	Error     error // last failure, nil unless Status is StatusFailed
	UpdatedAt time.Time
}

// 🔧 Tracker holds a Status per path
type Tracker struct {
	mu    sync.RWMutex
	files map[string]FileInfo
	now   func() time.Time
}

// 🏭 NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		files: make(map[string]FileInfo),
		now:   time.Now,
	}
}

// Set records status for path, clearing any previous error
func (t *Tracker) Set(path string, s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s == StatusNone {
		delete(t.files, path)
		return
	}
	t.files[path] = FileInfo{Path: path, Status: s, UpdatedAt: t.now()}
}

// Fail marks path failed with err
func (t *Tracker) Fail(path string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[path] = FileInfo{Path: path, Status: StatusFailed, Error: err, UpdatedAt: t.now()}
}

// Get returns the status of path, StatusNone if untouched
func (t *Tracker) Get(path string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.files[path].Status
}

// Info returns everything known about path
func (t *Tracker) Info(path string) (FileInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.files[path]
	return info, ok
}

// List returns all tracked files ordered by path
func (t *Tracker) List() []FileInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]FileInfo, 0, len(t.files))
	for _, info := range t.files {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Reset forgets every path
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]FileInfo)
}
