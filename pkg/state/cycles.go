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

package state

import "sync/atomic"

// 🔁 Cycles counts discovery+dispatch passes that have not finished draining.
// A cycle is in progress from the end of its discovery until its last worker
// finishes.
type Cycles struct {
	active  atomic.Int32
	workers atomic.Int64
	started atomic.Uint64
	skipped atomic.Uint64
}

// Begin always opens a cycle. One-shot runs use it; they are never coalesced.
func (c *Cycles) Begin() {
	c.active.Add(1)
	c.started.Add(1)
}

// TryBegin opens a cycle only if none is in progress. It returns false, and
// counts a skip, when another cycle is still draining.
func (c *Cycles) TryBegin() bool {
	if !c.active.CompareAndSwap(0, 1) {
		c.skipped.Add(1)
		return false
	}
	c.started.Add(1)
	return true
}

// End closes a cycle opened by Begin or a successful TryBegin
func (c *Cycles) End() {
	c.active.Add(-1)
}

func (c *Cycles) Active() int32 { return c.active.Load() }

func (c *Cycles) Started() uint64 { return c.started.Load() }

func (c *Cycles) Skipped() uint64 { return c.skipped.Load() }

// WorkerStarted and WorkerFinished track live workers across all cycles
func (c *Cycles) WorkerStarted() { c.workers.Add(1) }

func (c *Cycles) WorkerFinished() { c.workers.Add(-1) }

func (c *Cycles) Workers() int64 { return c.workers.Load() }
