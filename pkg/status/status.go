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
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xorbatch/pkg/provider"
)

// 📄 FileState is the last known state of one file of the current cycle
type FileState struct {
	File     provider.DiscoveredFile
	Percent  int
	Outcome  Outcome
	Finished bool
}

// 📊 Summary is a point-in-time view of a run
type Summary struct {
	Cycle         uint64 // number of the current (or last) cycle
	CyclesRun     int
	CyclesSkipped int
	Counts        Counts      // outcomes across every cycle
	Files         []FileState // files of the current cycle, by path
	Percent       int         // size-weighted progress of the current cycle
}

// 📈 Tracker aggregates events into per-file and per-run progress
type Tracker struct {
	logger    *zerolog.Logger
	formatter FileFormatter

	mu      sync.RWMutex
	cycle   uint64
	run     int
	skipped int
	counts  Counts
	files   map[string]FileState
}

var _ Sink = (*Tracker)(nil)

// 🏭 NewTracker creates a tracker. Formatted progress lines go to logger at
// debug level.
func NewTracker(logger *zerolog.Logger) *Tracker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Tracker{
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileState),
	}
}

// Publish feeds one event into the tracker
func (t *Tracker) Publish(e Event) {
	switch e.Kind {
	case KindDiscoveredFiles:
		t.StartCycle(e.Cycle, e.Files)
	case KindFileProgress:
		t.UpdateFile(e.File.Path, e.Percent)
	case KindWorkerFinished:
		t.FinishFile(e.File.Path, e.Outcome)
	case KindCycleSkipped:
		t.SkipCycle()
	case KindCycleFinished:
		t.FinishCycle(e.Counts)
	}
}

// StartCycle resets per-file state for a newly discovered set of files
func (t *Tracker) StartCycle(cycle uint64, files []provider.DiscoveredFile) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cycle = cycle
	t.files = make(map[string]FileState, len(files))
	for _, f := range files {
		t.files[f.Path] = FileState{File: f}
	}
	t.logger.Debug().Uint64("cycle", cycle).Msg(t.formatter.FormatProgress(0, len(files)))
}

// UpdateFile records the latest percent of a file. Lower values than the
// last seen one are ignored.
func (t *Tracker) UpdateFile(path string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[path]
	if !ok || fs.Finished || percent <= fs.Percent {
		return
	}
	fs.Percent = percent
	t.files[path] = fs
}

// FinishFile records the outcome of a file
func (t *Tracker) FinishFile(path string, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, ok := t.files[path]
	if !ok || fs.Finished {
		return
	}
	fs.Finished = true
	fs.Outcome = outcome
	if outcome == OutcomeCompleted {
		fs.Percent = 100
	}
	t.files[path] = fs

	t.logger.Debug().Str("path", path).Msg(t.formatter.FormatOutcome(path, outcome))
}

// FinishCycle folds the counts of a finished cycle into the run totals
func (t *Tracker) FinishCycle(counts Counts) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.run++
	t.counts.Merge(counts)
	t.logger.Debug().
		Uint64("cycle", t.cycle).
		Int("finished", counts.Finished()).
		Msg(t.formatter.FormatProgress(counts.Finished(), counts.Finished()+counts.NotStarted))
}

// SkipCycle counts a timer tick that found a cycle still running
func (t *Tracker) SkipCycle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skipped++
}

// GetFileState returns the state of one file of the current cycle
func (t *Tracker) GetFileState(path string) (FileState, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fs, ok := t.files[path]
	if !ok {
		return FileState{}, errors.Errorf("file not tracked: %s", path)
	}
	return fs, nil
}

// Snapshot returns the current summary
func (t *Tracker) Snapshot() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]FileState, 0, len(t.files))
	var total, done int64
	for _, fs := range t.files {
		files = append(files, fs)
		// empty files weigh one byte so they still move the needle
		size := max(fs.File.Size, 1)
		total += size
		done += size * int64(fs.Percent) / 100
	}
	sort.Slice(files, func(i, j int) bool { return files[i].File.Path < files[j].File.Path })

	percent := 0
	if total > 0 {
		percent = int(done * 100 / total)
	}

	return Summary{
		Cycle:         t.cycle,
		CyclesRun:     t.run,
		CyclesSkipped: t.skipped,
		Counts:        t.counts,
		Files:         files,
		Percent:       percent,
	}
}
