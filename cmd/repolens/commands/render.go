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

package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/walteh/repolens/pkg/remote"
	"github.com/walteh/repolens/pkg/session"
	"github.com/walteh/repolens/pkg/status"
	"github.com/walteh/repolens/pkg/tree"
)

// CreatedLayout is how the creation date is shown
const CreatedLayout = "Jan 2, 2006"

// 📊 RenderMetadata draws the repository card
func RenderMetadata(md *remote.RepoMetadata) (string, error) {
	if md == nil {
		return "", nil
	}

	header := pterm.DefaultSection.Sprint(md.Name)
	if md.Description != "" {
		header += md.Description + "\n"
	}

	stats := fmt.Sprintf("⭐ %d stars   🍴 %d forks   👀 %d watchers   📅 Created: %s",
		md.Stars, md.Forks, md.Watchers, md.CreatedAt.Local().Format(CreatedLayout))

	table, err := pterm.DefaultTable.WithData(pterm.TableData{
		{"Default Branch", md.DefaultBranch},
		{"Language", md.Language},
		{"Open Issues", fmt.Sprint(md.OpenIssues)},
		{"License", md.LicenseOrDefault()},
	}).Srender()
	if err != nil {
		return "", err
	}

	return header + stats + "\n\n" + table + "\n", nil
}

// 🌳 RenderTree draws the visible part of the tree under a root labelled title.
// Expanded files with an analysis show it beneath the file row.
func RenderTree(title string, root *tree.Folder, exp *tree.Expansion, s *session.Session) (string, error) {
	list := pterm.LeveledList{}

	tree.Walk(root, exp, func(r tree.Row) bool {
		if r.Folder != nil {
			marker := "▸"
			if r.Expanded {
				marker = "▾"
			}
			list = append(list, pterm.LeveledListItem{Level: r.Depth, Text: marker + " " + r.Folder.Name + "/"})
			return true
		}

		path := r.File.Path()
		st := status.StatusNone
		if s != nil {
			st = s.Status(path)
		}
		list = append(list, pterm.LeveledListItem{Level: r.Depth, Text: status.FormatFile(r.File.Name, st, r.Interactive)})

		if r.Expanded && s != nil {
			if text, ok := s.Analysis(path); ok {
				for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
					list = append(list, pterm.LeveledListItem{Level: r.Depth + 1, Text: line})
				}
			}
		}
		return true
	})

	node := putils.TreeFromLeveledList(list)
	node.Text = ""

	body, err := pterm.DefaultTree.WithRoot(node).Srender()
	if err != nil {
		return "", err
	}
	return pterm.Bold.Sprint(title) + "\n" + body, nil
}

// 📋 RenderStatus lists requested files with their state and any failure
func RenderStatus(files []status.FileInfo) string {
	if len(files) == 0 {
		return "no files analyzed yet\n"
	}

	var b strings.Builder
	for _, f := range files {
		b.WriteString(status.FormatFile(f.Path, f.Status, true))
		if f.Status == status.StatusFailed && f.Error != nil {
			b.WriteString(": " + f.Error.Error())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// 📝 RenderAnalysis draws one analysis in a titled box
func RenderAnalysis(path, text string) string {
	return pterm.DefaultBox.WithTitle(path).Sprint(text) + "\n"
}
