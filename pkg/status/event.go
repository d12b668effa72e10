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
	"time"

	"github.com/walteh/xorbatch/pkg/config"
	"github.com/walteh/xorbatch/pkg/provider"
)

// 🏷️ Kind tags the variant carried by an Event
type Kind int

const (
	KindLog Kind = iota
	KindValidationFailed
	KindDiscoveredFiles
	KindFileProgress
	KindWorkerFinished
	KindCycleSkipped
	KindCycleFinished
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindValidationFailed:
		return "validation_failed"
	case KindDiscoveredFiles:
		return "discovered_files"
	case KindFileProgress:
		return "file_progress"
	case KindWorkerFinished:
		return "worker_finished"
	case KindCycleSkipped:
		return "cycle_skipped"
	case KindCycleFinished:
		return "cycle_finished"
	default:
		return "unknown"
	}
}

// 📶 Level is the severity of a log event
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns a string representation of Level
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// 🏁 Outcome is how a worker ended
type Outcome int

const (
	OutcomeCompleted  Outcome = iota // output fully written
	OutcomeStopped                   // stop requested; output left partial
	OutcomeOpenFailed                // input or output could not be opened; nothing written
	OutcomeFailed                    // read or write failed mid-stream; output left partial
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeOpenFailed:
		return "open_failed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 🔢 Counts tallies worker outcomes. NotStarted counts discovered files that
// were never dispatched because a stop arrived first.
type Counts struct {
	Completed  int `json:"completed"`
	Stopped    int `json:"stopped"`
	OpenFailed int `json:"open_failed"`
	Failed     int `json:"failed"`
	NotStarted int `json:"not_started"`
}

// Add records one outcome
func (c *Counts) Add(o Outcome) {
	switch o {
	case OutcomeCompleted:
		c.Completed++
	case OutcomeStopped:
		c.Stopped++
	case OutcomeOpenFailed:
		c.OpenFailed++
	case OutcomeFailed:
		c.Failed++
	}
}

// Merge adds every field of o
func (c *Counts) Merge(o Counts) {
	c.Completed += o.Completed
	c.Stopped += o.Stopped
	c.OpenFailed += o.OpenFailed
	c.Failed += o.Failed
	c.NotStarted += o.NotStarted
}

// Finished is the number of workers that ran, whatever their outcome
func (c Counts) Finished() int {
	return c.Completed + c.Stopped + c.OpenFailed + c.Failed
}

// 📨 Event is one message from the core to the presentation layer. Kind
// selects which of the remaining fields are meaningful.
type Event struct {
	Kind  Kind
	Time  time.Time
	Cycle uint64 // cycle number, 0 for run-level events

	// KindLog
	Level Level
	Text  string

	// KindValidationFailed
	Invalid config.ValidationResult

	// KindDiscoveredFiles
	Files []provider.DiscoveredFile

	// KindFileProgress, KindWorkerFinished
	File    provider.DiscoveredFile
	Percent int
	Outcome Outcome

	// KindCycleFinished
	Counts Counts
}

// 📬 Sink receives events. Implementations must not block for long: workers
// publish from their own goroutines.
type Sink interface {
	Publish(e Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(e Event)

func (f SinkFunc) Publish(e Event) { f(e) }

func Log(level Level, text string) Event {
	return Event{Kind: KindLog, Time: time.Now(), Level: level, Text: text}
}

func ValidationFailed(res config.ValidationResult) Event {
	return Event{Kind: KindValidationFailed, Time: time.Now(), Invalid: res}
}

func DiscoveredFiles(cycle uint64, files []provider.DiscoveredFile) Event {
	return Event{Kind: KindDiscoveredFiles, Time: time.Now(), Cycle: cycle, Files: files}
}

func FileProgress(cycle uint64, file provider.DiscoveredFile, percent int) Event {
	return Event{Kind: KindFileProgress, Time: time.Now(), Cycle: cycle, File: file, Percent: percent}
}

func WorkerFinished(cycle uint64, file provider.DiscoveredFile, outcome Outcome) Event {
	return Event{Kind: KindWorkerFinished, Time: time.Now(), Cycle: cycle, File: file, Outcome: outcome}
}

func CycleSkipped() Event {
	return Event{Kind: KindCycleSkipped, Time: time.Now()}
}

func CycleFinished(cycle uint64, counts Counts) Event {
	return Event{Kind: KindCycleFinished, Time: time.Now(), Cycle: cycle, Counts: counts}
}
