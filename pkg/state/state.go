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

// Package state holds the run state shared between the coordinator and its
// workers: operator control signals and cycle accounting. Every field is
// atomic; one control goroutine writes while any number of workers read.
package state

import (
	"context"
	"sync/atomic"
	"time"
)

// 🚦 Signals carries the pause and stop requests of one run. A *Signals is
// handed to each worker at construction; a new run gets a new Signals.
type Signals struct {
	paused  atomic.Bool
	stopped atomic.Bool
}

// 🏭 NewSignals returns signals with neither flag set
func NewSignals() *Signals {
	return &Signals{}
}

// ⏸️ Pause asks workers to suspend at their next block boundary
func (s *Signals) Pause() { s.paused.Store(true) }

// ▶️ Resume clears a pause
func (s *Signals) Resume() { s.paused.Store(false) }

// 🛑 Stop asks workers to exit at their next block boundary. It is permanent
// for this Signals.
func (s *Signals) Stop() { s.stopped.Store(true) }

// StopFirst stops and reports whether this call was the one that did it
func (s *Signals) StopFirst() bool { return s.stopped.CompareAndSwap(false, true) }

func (s *Signals) Paused() bool  { return s.paused.Load() }
func (s *Signals) Stopped() bool { return s.stopped.Load() }

// ⏳ WaitWhilePaused sleeps in steps of poll while paused is set. It returns
// false when the caller should stop instead of continuing: stop was requested
// or ctx ended.
func (s *Signals) WaitWhilePaused(ctx context.Context, poll time.Duration) bool {
	for s.Paused() && !s.Stopped() {
		t := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
	return !s.Stopped() && ctx.Err() == nil
}
