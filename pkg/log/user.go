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

package log

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/status"
)

// 📢 UserLogger prints operator-facing messages with pterm
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
	out io.Writer
}

// 🎯 NewUserLogger creates a new user logger writing to out
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

func (u *UserLogger) print(printer *pterm.PrefixPrinter, msg string) {
	fmt.Fprint(u.out, printer.Sprintln(msg))
}

// 📊 LogStateChange logs a change to the state of the run
func (u *UserLogger) LogStateChange(description string) {
	u.print(pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}), description)
	u.log.Info().Msg(description)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		u.print(pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}), description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		u.print(pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}), description)
		u.print(&pterm.Error, err.Error())
		u.log.Error().Err(err).Msg(description)
		return
	}
	u.print(pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}), description)
	u.log.Warn().Msg(description)
}

// 📋 LogDiscovered prints the files of a cycle as a table
func (u *UserLogger) LogDiscovered(cycle uint64, files []provider.DiscoveredFile) {
	if len(files) == 0 {
		return
	}

	data := pterm.TableData{{"#", "File", "Type", "Size"}}
	for i, f := range files {
		suffix := f.Suffix
		if suffix == "" {
			suffix = "-"
		}
		data = append(data, []string{strconv.Itoa(i + 1), f.Name, suffix, FormatBytes(f.Size)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		u.log.Debug().Err(err).Msg("rendering file table")
		return
	}
	fmt.Fprintln(u.out, table)
	u.log.Debug().Uint64("cycle", cycle).Int("files", len(files)).Msg("listed discovered files")
}

// 📈 LogSummary prints a snapshot of the run
func (u *UserLogger) LogSummary(s status.Summary) {
	c := s.Counts
	msg := fmt.Sprintf("cycle %d at %d%% • %d cycles run, %d skipped • %d completed, %d stopped, %d open failed, %d failed, %d not started",
		s.Cycle, s.Percent, s.CyclesRun, s.CyclesSkipped, c.Completed, c.Stopped, c.OpenFailed, c.Failed, c.NotStarted)
	u.print(pterm.Info.WithPrefix(pterm.Prefix{Text: "📈"}), msg)
	u.log.Info().
		Uint64("cycle", s.Cycle).
		Int("percent", s.Percent).
		Int("cycles_run", s.CyclesRun).
		Int("cycles_skipped", s.CyclesSkipped).
		Msg("run summary")
}
