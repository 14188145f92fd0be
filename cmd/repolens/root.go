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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/cmd/repolens/commands"
	"github.com/walteh/repolens/cmd/repolens/opts"
	"github.com/walteh/repolens/pkg/config"
	"github.com/walteh/repolens/pkg/log"
	"github.com/walteh/repolens/pkg/session"
)

// rootFlags are the flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, f *rootFlags) {
	cmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "config file path (default: .repolens.{yaml,yml,hcl,json} in the working directory)")
	cmd.PersistentFlags().BoolVarP(&f.debug, "debug", "d", false, "enable debug logging")
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "repolens",
		Short: "Explore a GitHub repository and have its files explained",
		Long: `repolens loads a public GitHub repository's metadata and file tree
and asks a chat-completion model to explain individual source files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, flags, o)
		},
	}

	addRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		commands.NewInfoCmd(o),
		commands.NewTreeCmd(o),
		commands.NewExplainCmd(o),
		commands.NewBrowseCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// setup configures logging, loads config and wires the session
func setup(cmd *cobra.Command, flags *rootFlags, o *opts.RootOpts) error {
	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}

	o.Logger = log.New(cmd.OutOrStdout(), level)
	ctx := log.NewContext(cmd.Context(), o.Logger)
	cmd.SetContext(ctx)

	path := flags.configFile
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Discover(wd)
		}
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		o.Logger.Notify(ctx, log.Notice{Level: log.LevelError, Title: "Configuration Error", Message: err.Error()})
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg

	s, err := session.FromConfig(ctx, cfg, o.Logger)
	if err != nil {
		return errors.Errorf("creating session: %w", err)
	}
	o.Session = s

	return nil
}
