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
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/status"
)

// 🎯 Logger renders run events as console lines and mirrors them to zerolog
type Logger struct {
	zlog     zerolog.Logger
	console  io.Writer
	mu       sync.Mutex
	progress bool
	percents map[string]int // last percent per file of the current cycle
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:     zlog,
		console:  console,
		mu:       sync.Mutex{},
		progress: true,
		percents: make(map[string]int),
	}
}

// ShowProgress turns per-file progress lines on or off. Outcome lines are
// always shown.
func (l *Logger) ShowProgress(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = on
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📺 Render writes one event to the console
func (l *Logger) Render(e status.Event) {
	switch e.Kind {
	case status.KindValidationFailed:
		l.Errorf("Invalid parameters: %s", e.Invalid)
	case status.KindLog:
		switch e.Level {
		case status.LevelError:
			l.Error(e.Text)
		case status.LevelWarn:
			l.Warning(e.Text)
		default:
			l.Info(e.Text)
		}
	case status.KindDiscoveredFiles:
		l.StartCycle(e.Cycle, e.Files)
	case status.KindFileProgress:
		l.FileProgress(e)
	case status.KindWorkerFinished:
		l.FileFinished(e)
	case status.KindCycleSkipped:
		l.Warning("Previous cycle still running, tick skipped")
	case status.KindCycleFinished:
		l.EndCycle(e.Cycle, e.Counts)
	}
}

// 📝 StartCycle prints the header of a cycle
func (l *Logger) StartCycle(cycle uint64, files []provider.DiscoveredFile) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.percents = make(map[string]int, len(files))

	var total int64
	for _, f := range files {
		total += f.Size
	}

	fmt.Fprintf(l.console, "[cycle %s]\n", color.New(color.FgCyan).Sprint(cycle))
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d files", len(files)),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(FormatBytes(total)))

	l.zlog.Info().
		Uint64("cycle", cycle).
		Int("files", len(files)).
		Int64("bytes", total).
		Msg("cycle started")
}

// 📝 FileProgress prints a progress line for one file
func (l *Logger) FileProgress(e status.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.percents[e.File.Path] = e.Percent
	if !l.progress {
		return
	}
	fmt.Fprintln(l.console, status.FormatFileProgress(e.File.Name, e.Percent, status.OutcomeCompleted, false))
}

// 📝 FileFinished prints the outcome line for one file
func (l *Logger) FileFinished(e status.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	percent := l.percents[e.File.Path]
	if e.Outcome == status.OutcomeCompleted {
		percent = 100
	}
	delete(l.percents, e.File.Path)

	fmt.Fprintln(l.console, status.FormatFileProgress(e.File.Name, percent, e.Outcome, true))

	l.zlog.Info().
		Str("file", e.File.Path).
		Int64("size", e.File.Size).
		Str("outcome", e.Outcome.String()).
		Msg("file finished")
}

// 📝 EndCycle prints the summary of a cycle
func (l *Logger) EndCycle(cycle uint64, c status.Counts) {
	msg := fmt.Sprintf("Cycle %d finished: %d completed, %d stopped, %d open failed, %d failed, %d not started",
		cycle, c.Completed, c.Stopped, c.OpenFailed, c.Failed, c.NotStarted)
	if c.OpenFailed+c.Failed > 0 {
		l.Warning(msg)
		return
	}
	l.Success(msg)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("xorbatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
