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

package tree

import (
	"sync"

	"github.com/walteh/repolens/pkg/text"
)

// 🔀 Expansion tracks which folders and files are open, keyed by path
type Expansion struct {
	mu      sync.RWMutex
	folders map[string]struct{}
	files   map[string]struct{}
}

// NewExpansion returns an empty expansion state
func NewExpansion() *Expansion {
	return &Expansion{
		folders: map[string]struct{}{},
		files:   map[string]struct{}{},
	}
}

func toggle(set map[string]struct{}, path string) bool {
	if _, ok := set[path]; ok {
		delete(set, path)
		return false
	}
	set[path] = struct{}{}
	return true
}

// ToggleFolder flips the folder at path and returns whether it is now open
func (e *Expansion) ToggleFolder(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return toggle(e.folders, path)
}

// ToggleFile flips the file at path and returns whether it is now open
func (e *Expansion) ToggleFile(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return toggle(e.files, path)
}

// FolderExpanded reports whether the folder at path is open
func (e *Expansion) FolderExpanded(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.folders[path]
	return ok
}

// FileExpanded reports whether the file at path is open
func (e *Expansion) FileExpanded(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.files[path]
	return ok
}

// ExpandAll opens every folder below root
func (e *Expansion) ExpandAll(root *Folder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var walk func(f *Folder)
	walk = func(f *Folder) {
		for _, child := range f.folders {
			e.folders[child.Path] = struct{}{}
			walk(child)
		}
	}
	walk(root)
}

// Row is one visible line of the rendered tree
type Row struct {
	Depth  int
	Folder *Folder // set for folder rows
	File   *File   // set for file rows

	Expanded bool
	// Interactive is false for files that cannot be analyzed
	Interactive bool
}

// 🚶 Walk visits visible rows in render order: folders first, then files,
// descending only into expanded folders. Returning false stops the walk.
func Walk(root *Folder, exp *Expansion, fn func(Row) bool) {
	walk(root, exp, 0, fn)
}

func walk(f *Folder, exp *Expansion, depth int, fn func(Row) bool) bool {
	for _, child := range f.folders {
		open := exp.FolderExpanded(child.Path)
		if !fn(Row{Depth: depth, Folder: child, Expanded: open, Interactive: true}) {
			return false
		}
		if open && !walk(child, exp, depth+1, fn) {
			return false
		}
	}
	for _, file := range f.files {
		row := Row{
			Depth:       depth,
			File:        file,
			Expanded:    exp.FileExpanded(file.Path()),
			Interactive: text.IsTextFile(file.Path()),
		}
		if !fn(row) {
			return false
		}
	}
	return true
}
