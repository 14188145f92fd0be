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

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/cmd/repolens/opts"
	"github.com/walteh/repolens/pkg/tree"
)

// 🌳 NewTreeCmd creates the tree command
func NewTreeCmd(o *opts.RootOpts) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "tree <url>",
		Short: "Print the full repository tree",
		Long: `Tree lists every folder and file of the repository's branch.
Files that cannot be analyzed are marked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := o.Session.Search(ctx, args[0]); err != nil {
				return errors.Errorf("loading repository: %w", err)
			}

			root := o.Session.Tree()
			if sorted {
				root = root.Sorted()
			}

			exp := tree.NewExpansion()
			exp.ExpandAll(root)

			out, err := RenderTree(o.Session.Snapshot().Ref.String(), root, exp, o.Session)
			if err != nil {
				return errors.Errorf("rendering tree: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			if o.Session.Snapshot().Truncated {
				o.Logger.Warning("the host truncated this listing; some files are missing")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sorted, "sorted", false, "sort folders and files by name")

	return cmd
}
