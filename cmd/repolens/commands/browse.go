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
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/cmd/repolens/opts"
	"github.com/walteh/repolens/pkg/text"
)

const browseCommands = `commands:
  open <folder>   expand or collapse a folder
  click <file>    analyze a file, or show/hide its analysis
  status          list analyzed and failed files
  show            redraw the tree
  quit            leave`

func browseHelp() string {
	return browseCommands + "\n\nanalyzable extensions:\n  " + strings.Join(text.TextExtensions(), " ")
}

// 🧭 NewBrowseCmd creates the browse command
func NewBrowseCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <url>",
		Short: "Explore a repository interactively",
		Long:  "Browse loads a repository and reads commands line by line.\n\n" + browseHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if err := o.Session.Search(ctx, args[0]); err != nil {
				return errors.Errorf("loading repository: %w", err)
			}

			show := func() error {
				rendered, err := RenderTree(o.Session.Snapshot().Ref.String(), o.Session.Tree(), o.Session.Expansion(), o.Session)
				if err != nil {
					return errors.Errorf("rendering tree: %w", err)
				}
				fmt.Fprint(out, rendered)
				return nil
			}

			if err := show(); err != nil {
				return err
			}

			return browse(cmd.InOrStdin(), out, func(verb, arg string) (bool, error) {
				switch verb {
				case "open":
					o.Session.ToggleFolder(strings.Trim(arg, "/"))
					return false, show()
				case "click":
					// failures already surface as notices
					_, _ = o.Session.ClickFile(ctx, arg)
					return false, show()
				case "show":
					return false, show()
				case "status":
					fmt.Fprint(out, RenderStatus(o.Session.Tracked()))
				case "quit", "exit":
					return true, nil
				case "help":
					fmt.Fprintln(out, browseHelp())
				default:
					o.Logger.Errorf("unknown command %q, try help", verb)
				}
				return false, nil
			})
		},
	}

	return cmd
}

// browse feeds each non-empty input line to handle until it asks to stop or input ends
func browse(in io.Reader, out io.Writer, handle func(verb, arg string) (bool, error)) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")

		done, err := handle(strings.ToLower(verb), strings.TrimSpace(arg))
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
