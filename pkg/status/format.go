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
	"github.com/fatih/color"
)

// 🎨 Symbol returns the marker drawn next to a file row
func Symbol(s Status, interactive bool) string {
	if !interactive {
		return color.HiBlackString("·")
	}
	switch s {
	case StatusAnalyzing:
		return color.YellowString("⟳")
	case StatusAnalyzed:
		return color.GreenString("✓")
	case StatusFailed:
		return color.RedString("✗")
	default:
		return color.CyanString("•")
	}
}

// 🎯 FormatFile renders a file row label: marker, name and a dimmed state
func FormatFile(name string, s Status, interactive bool) string {
	label := Symbol(s, interactive) + " " + name
	switch {
	case !interactive:
		return label + color.HiBlackString(" (not analyzable)")
	case s == StatusNone:
		return label
	default:
		return label + color.HiBlackString(" ("+s.String()+")")
	}
}
