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
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/repolens/pkg/config"
	"github.com/walteh/repolens/pkg/remote"
)

// VersionInfo is the build of the binary plus the settings it runs with when nothing is configured
type VersionInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Time      string `json:"time"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`

	DefaultModel    string   `json:"default_model"`
	DefaultBranch   string   `json:"default_branch"`
	DefaultMaxChars int      `json:"default_max_chars"`
	Providers       []string `json:"providers"`
	ConfigFiles     []string `json:"config_files"`
}

// GetVersionInfo reads build settings and the effective defaults
func GetVersionInfo() *VersionInfo {
	defaults := config.Default()
	info := &VersionInfo{
		Version:         "dev",
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		DefaultModel:    defaults.OpenAI.Model,
		DefaultBranch:   defaults.GitHub.Branch,
		DefaultMaxChars: defaults.Analysis.MaxChars,
		Providers:       remote.ProviderNames(),
		ConfigFiles:     config.DiscoveryNames,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			info.Time = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

// 🔭 FormatVersion renders info for the terminal
func FormatVersion(info *VersionInfo) string {
	var b strings.Builder
	b.WriteString("🔭 repolens\n")

	rev := info.Revision
	if rev == "" {
		rev = "unknown"
	}
	if info.Modified {
		rev += " (modified)"
	}
	fmt.Fprintf(&b, "Version:   %s\n", info.Version)
	fmt.Fprintf(&b, "Revision:  %s\n", rev)
	if info.Time != "" {
		fmt.Fprintf(&b, "Built:     %s\n", info.Time)
	}
	fmt.Fprintf(&b, "Go:        %s %s\n", info.GoVersion, info.Platform)

	b.WriteString("\n⚙️ defaults\n")
	fmt.Fprintf(&b, "Model:     %s\n", info.DefaultModel)
	fmt.Fprintf(&b, "Branch:    %s\n", info.DefaultBranch)
	fmt.Fprintf(&b, "Max chars: %d\n", info.DefaultMaxChars)
	fmt.Fprintf(&b, "Providers: %s\n", strings.Join(info.Providers, ", "))
	fmt.Fprintf(&b, "Config:    %s\n", strings.Join(info.ConfigFiles, ", "))
	return b.String()
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information and default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetVersionInfo()
			if !asJSON {
				fmt.Fprint(cmd.OutOrStdout(), FormatVersion(info))
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(info); err != nil {
				return errors.Errorf("encoding version info: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
