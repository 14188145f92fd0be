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
	"github.com/walteh/repolens/pkg/log"
	"github.com/walteh/repolens/pkg/session"
)

// 🔬 NewExplainCmd creates the explain command
func NewExplainCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <url> <path>...",
		Short: "Analyze files and print what they do",
		Long: `Explain loads the repository, then analyzes each path in turn.
Paths that are not text files are skipped. A failed file does not stop the rest.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := o.Session.Search(ctx, args[0]); err != nil {
				return errors.Errorf("loading repository: %w", err)
			}

			failed := 0
			for _, path := range args[1:] {
				outcome, _ := o.Session.ClickFile(ctx, path)
				switch outcome {
				case session.OutcomeAnalyzed, session.OutcomeToggled:
					text, _ := o.Session.Analysis(path)
					o.Logger.LogFileAnalysis(ctx, log.FileAnalysis{Path: path, Status: "analyzed", Chars: len(text)})
					fmt.Fprint(cmd.OutOrStdout(), RenderAnalysis(path, text))
				case session.OutcomeNotConfigured:
					return errors.New("analysis is not configured")
				case session.OutcomeIgnored:
					o.Logger.LogFileAnalysis(ctx, log.FileAnalysis{Path: path, Status: "skipped"})
				default:
					failed++
					o.Logger.LogFileAnalysis(ctx, log.FileAnalysis{Path: path, Status: "failed"})
				}
			}

			if failed > 0 {
				return errors.Errorf("%d of %d files failed", failed, len(args)-1)
			}
			return nil
		},
	}

	return cmd
}
