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

package transform

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xorbatch/pkg/config"
	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/state"
	"github.com/walteh/xorbatch/pkg/status"
	"github.com/walteh/xorbatch/pkg/xorblock"
)

const (
	DefaultProgressInterval = 100 * time.Millisecond
	DefaultPausePoll        = 100 * time.Millisecond
)

// 📦 Item is one discovered file bound to the cycle that found it
type Item struct {
	Cycle uint64
	File  provider.DiscoveredFile
}

// 🔧 Options are the run parameters a worker needs, plus its collaborators
type Options struct {
	Key          string
	Conflict     config.ConflictMode
	DeleteSource bool
	OutputFolder string

	// Signals is shared with the coordinator and every other worker of the run
	Signals *state.Signals
	// Sink receives Log, FileProgress and WorkerFinished events
	Sink status.Sink
	// Logger is optional; defaults to a no-op logger
	Logger *zerolog.Logger

	BlockSize        int
	ProgressInterval time.Duration
	PausePoll        time.Duration
	// Now is the clock used for progress throttling; defaults to time.Now
	Now func() time.Time
}

// 🔨 Worker transforms exactly one file. A worker is single use.
type Worker struct {
	item   Item
	opts   Options
	cipher *xorblock.Cipher
	logger zerolog.Logger

	progress *throttle
}

// 🏭 New creates a worker for item
func New(item Item, opts Options) (*Worker, error) {
	if opts.Signals == nil {
		return nil, errors.Errorf("signals are required")
	}
	if opts.Sink == nil {
		return nil, errors.Errorf("sink is required")
	}

	cipher, err := xorblock.New(opts.Key)
	if err != nil {
		return nil, errors.Errorf("creating cipher: %w", err)
	}

	if opts.BlockSize <= 0 {
		opts.BlockSize = xorblock.DefaultBlockSize
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.PausePoll <= 0 {
		opts.PausePoll = DefaultPausePoll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Worker{
		item:   item,
		opts:   opts,
		cipher: cipher,
		logger: logger.With().Str("file", item.File.Path).Uint64("cycle", item.Cycle).Logger(),

		progress: newThrottle(opts.ProgressInterval, opts.Now),
	}, nil
}

// Item returns the work item of this worker
func (w *Worker) Item() Item {
	return w.item
}

// 🏃 Run transforms the file and returns how it ended. WorkerFinished is
// published exactly once, whatever the path out.
func (w *Worker) Run(ctx context.Context) (outcome status.Outcome) {
	file := w.item.File
	defer func() {
		w.logger.Debug().Str("outcome", outcome.String()).Msg("worker finished")
		w.opts.Sink.Publish(status.WorkerFinished(w.item.Cycle, file, outcome))
	}()

	in, err := os.Open(file.Path)
	if err != nil {
		w.log(status.LevelError, err, "Failed to open input file: %s", file.Path)
		return status.OutcomeOpenFailed
	}
	defer in.Close()

	out, err := w.openOutput(in)
	if err != nil {
		w.log(status.LevelError, err, "Failed to open output file for: %s", file.Path)
		return status.OutcomeOpenFailed
	}

	outcome, err = w.stream(ctx, in, out.file)
	if cerr := out.file.Close(); cerr != nil && outcome == status.OutcomeCompleted {
		outcome, err = status.OutcomeFailed, errors.Errorf("closing output: %w", cerr)
	}

	switch outcome {
	case status.OutcomeStopped:
		w.log(status.LevelWarn, nil, "Stopped, partial output left at: %s", out.path)
		return outcome
	case status.OutcomeFailed:
		w.log(status.LevelError, err, "Failed while transforming %s, partial output left at: %s", file.Path, out.path)
		return outcome
	}

	// the final 100% always goes out on success
	if w.progress.last < 100 {
		w.opts.Sink.Publish(status.FileProgress(w.item.Cycle, file, 100))
	}

	// close before removing or replacing the source
	in.Close()
	w.place(out)

	return status.OutcomeCompleted
}

// stream copies in to out one block at a time, checking the signals before
// every block.
func (w *Worker) stream(ctx context.Context, in io.Reader, out io.Writer) (status.Outcome, error) {
	buf := make([]byte, w.opts.BlockSize)
	size := w.item.File.Size
	var offset int64

	for {
		if w.opts.Signals.Stopped() || ctx.Err() != nil {
			return status.OutcomeStopped, nil
		}
		if !w.opts.Signals.WaitWhilePaused(ctx, w.opts.PausePoll) {
			return status.OutcomeStopped, nil
		}

		n, rerr := io.ReadFull(in, buf)
		if n > 0 {
			w.cipher.Apply(buf[:n], offset)
			if _, err := out.Write(buf[:n]); err != nil {
				return status.OutcomeFailed, errors.Errorf("writing block at %d: %w", offset, err)
			}
			offset += int64(n)

			if size > 0 {
				percent := int(min(offset*100/size, 100))
				if w.progress.ready(percent) {
					w.opts.Sink.Publish(status.FileProgress(w.item.Cycle, w.item.File, percent))
				}
			}
		}

		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return status.OutcomeCompleted, nil
		default:
			return status.OutcomeFailed, errors.Errorf("reading block at %d: %w", offset, rerr)
		}
	}
}

func (w *Worker) log(level status.Level, err error, format string, args ...any) {
	text := fmt.Sprintf(format, args...)

	var ev *zerolog.Event
	switch level {
	case status.LevelError:
		ev = w.logger.Error()
	case status.LevelWarn:
		ev = w.logger.Warn()
	default:
		ev = w.logger.Info()
	}
	if err != nil {
		ev = ev.Err(err)
		text = fmt.Sprintf("%s (%v)", text, err)
	}
	ev.Msg(text)

	w.opts.Sink.Publish(status.Log(level, text))
}
