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
	"sort"
	"strings"

	"github.com/walteh/repolens/pkg/remote"
)

// 📁 Folder is a directory node. Children keep insertion order.
type Folder struct {
	Name string
	Path string

	folders     []*Folder
	files       []*File
	folderIndex map[string]*Folder
}

// 📄 File is a leaf holding the entry it was built from
type File struct {
	Name  string
	Entry remote.TreeEntry
}

// Path returns the full path of the file
func (f *File) Path() string {
	return f.Entry.Path
}

func newFolder(name, path string) *Folder {
	return &Folder{
		Name:        name,
		Path:        path,
		folderIndex: map[string]*Folder{},
	}
}

// Folders returns the sub folders in insertion order
func (f *Folder) Folders() []*Folder {
	return f.folders
}

// Files returns the file leaves in insertion order
func (f *Folder) Files() []*File {
	return f.files
}

// Folder returns the direct child folder called name
func (f *Folder) Folder(name string) (*Folder, bool) {
	child, ok := f.folderIndex[name]
	return child, ok
}

// File returns the direct child file called name
func (f *Folder) File(name string) (*File, bool) {
	for _, file := range f.files {
		if file.Name == name {
			return file, true
		}
	}
	return nil, false
}

func (f *Folder) ensureFolder(name string) *Folder {
	if child, ok := f.folderIndex[name]; ok {
		return child
	}
	path := name
	if f.Path != "" {
		path = f.Path + "/" + name
	}
	child := newFolder(name, path)
	f.folderIndex[name] = child
	f.folders = append(f.folders, child)
	return child
}

// 🏗️ Build turns the flat listing into a hierarchy. Every non-terminal
// segment becomes exactly one folder, whether or not the listing names it.
func Build(entries []remote.TreeEntry) *Folder {
	root := newFolder("", "")

	for _, entry := range entries {
		if entry.Path == "" {
			continue
		}

		parts := strings.Split(entry.Path, "/")
		current := root
		for _, part := range parts[:len(parts)-1] {
			current = current.ensureFolder(part)
		}

		last := parts[len(parts)-1]
		if entry.Kind == remote.KindTree {
			current.ensureFolder(last)
			continue
		}

		current.files = append(current.files, &File{Name: last, Entry: entry})
	}

	return root
}

// 🔍 LookupFolder finds the folder at path; "" is the root
func (f *Folder) LookupFolder(path string) (*Folder, bool) {
	if path == "" {
		return f, true
	}
	current := f
	for _, part := range strings.Split(path, "/") {
		next, ok := current.folderIndex[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// 🔍 LookupFile finds the file leaf at path
func (f *Folder) LookupFile(path string) (*File, bool) {
	dir, name := "", path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		dir, name = path[:idx], path[idx+1:]
	}
	parent, ok := f.LookupFolder(dir)
	if !ok {
		return nil, false
	}
	return parent.File(name)
}

// CountFiles returns the number of file leaves below f
func (f *Folder) CountFiles() int {
	n := len(f.files)
	for _, child := range f.folders {
		n += child.CountFiles()
	}
	return n
}

// Sorted returns a deep copy with folders and files ordered by name
func (f *Folder) Sorted() *Folder {
	out := newFolder(f.Name, f.Path)
	for _, child := range f.folders {
		sc := child.Sorted()
		out.folders = append(out.folders, sc)
		out.folderIndex[sc.Name] = sc
	}
	out.files = append(out.files, f.files...)

	sort.SliceStable(out.folders, func(i, j int) bool { return out.folders[i].Name < out.folders[j].Name })
	sort.SliceStable(out.files, func(i, j int) bool { return out.files[i].Name < out.files[j].Name })
	return out
}
