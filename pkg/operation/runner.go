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

package operation

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const DefaultPollInterval = 10 * time.Millisecond

// DefaultCeiling is the most workers that may run at once
func DefaultCeiling() int {
	return max(1, runtime.GOMAXPROCS(0)*4)
}

// 🧱 Job is one unit of work handed to the runner
type Job func(ctx context.Context)

// 🏃 Runner is a bounded worker pool. The ceiling holds across every call to
// Run, so overlapping cycles share it.
type Runner struct {
	logger  *zerolog.Logger
	ceiling int
	poll    time.Duration
	slots   *semaphore.Weighted
}

// 🏗️ NewRunner creates a new runner
func NewRunner(logger *zerolog.Logger, ceiling int, poll time.Duration) *Runner {
	if ceiling <= 0 {
		ceiling = DefaultCeiling()
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Runner{
		logger:  logger,
		ceiling: ceiling,
		poll:    poll,
		slots:   semaphore.NewWeighted(int64(ceiling)),
	}
}

// Ceiling returns the pool size
func (r *Runner) Ceiling() int {
	return r.ceiling
}

// 🔄 Run feeds jobs to the pool one at a time, in order. While the pool is
// full it polls, checking stopped on every poll; once stopped reports true no
// further job is started. Run returns after every started job has returned,
// with the number of jobs started.
func (r *Runner) Run(ctx context.Context, jobs []Job, stopped func() bool) int {
	var g errgroup.Group
	started := 0

feed:
	for _, job := range jobs {
		for !r.slots.TryAcquire(1) {
			if stopped() {
				break feed
			}
			time.Sleep(r.poll)
		}
		if stopped() {
			r.slots.Release(1)
			break
		}

		started++
		g.Go(func() error {
			defer r.slots.Release(1)
			job(ctx)
			return nil
		})
	}

	if skipped := len(jobs) - started; skipped > 0 {
		r.logger.Debug().Int("skipped", skipped).Int("started", started).Msg("feed stopped early")
	}

	_ = g.Wait()
	return started
}
