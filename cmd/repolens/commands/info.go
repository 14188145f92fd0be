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
)

// 📊 NewInfoCmd creates the info command
func NewInfoCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Show repository metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := o.Session.Search(ctx, args[0]); err != nil {
				return errors.Errorf("loading repository: %w", err)
			}

			card, err := RenderMetadata(o.Session.Metadata())
			if err != nil {
				return errors.Errorf("rendering metadata: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), card)
			return nil
		},
	}

	return cmd
}
