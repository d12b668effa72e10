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
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent    = 4  // spaces to indent file entries
	nameWidth     = 35 // Base width for filename
	barWidth      = 20 // Width of the progress bar
	percentWidth  = 4  // Width for the percent text
	outcomeWidth  = 12 // Width for outcome text
	barFillSymbol = "█"
	barRestSymbol = "░"
)

// 🎯 FormatFileProgress formats one file line for display. finished selects
// between a progress bar and the final outcome marker.
func FormatFileProgress(name string, percent int, outcome Outcome, finished bool) string {
	percent = min(max(percent, 0), 100)

	var prefix string
	switch {
	case !finished:
		prefix = color.CyanString("⟳")
	case outcome == OutcomeCompleted:
		prefix = color.GreenString("✓")
	case outcome == OutcomeStopped:
		prefix = color.YellowString("■")
	default:
		prefix = color.RedString("✗")
	}

	filled := barWidth * percent / 100
	bar := strings.Repeat(barFillSymbol, filled) + strings.Repeat(barRestSymbol, barWidth-filled)

	state := "running"
	if finished {
		state = outcome.String()
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, name)
	percentPart := fmt.Sprintf("%*d%%", percentWidth-1, percent)
	statePart := fmt.Sprintf("%-*s", outcomeWidth, state)

	return fmt.Sprintf("%s%s %s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		color.HiBlackString(bar),
		percentPart,
		statePart,
	)
}
