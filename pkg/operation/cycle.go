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
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/status"
	"github.com/walteh/xorbatch/pkg/transform"
)

// ⏰ timerLoop runs one cycle per tick until the run is stopped
func (c *Coordinator) timerLoop(ctx context.Context, r *run) {
	interval := time.Duration(r.params.Treatment.Interval()) * time.Second
	ticks, stopTicker := c.opts.Ticker(interval)
	defer stopTicker()

	zerolog.Ctx(ctx).Debug().Dur("interval", interval).Msg("timer armed")

	for {
		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Debug().Msg("timer disarmed")
			return
		case <-ticks:
			if r.signals.Stopped() {
				return
			}
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.cycle(ctx, r, true)
			}()
		}
	}
}

// 🔄 cycle discovers files and dispatches one worker per file, then waits for
// all of them. With coalesce set the cycle is skipped while another is active.
// CycleFinished goes out only after the cycle stopped counting as active.
func (c *Coordinator) cycle(ctx context.Context, r *run, coalesce bool) {
	if coalesce {
		if !c.cycles.TryBegin() {
			c.info("Previous cycle still running, skipping this tick")
			c.Publish(status.CycleSkipped())
			return
		}
	} else {
		c.cycles.Begin()
	}

	n, counts, ran := c.discoverAndDispatch(ctx, r)
	c.cycles.End()

	if ran {
		c.Publish(status.CycleFinished(n, counts))
	}
}

func (c *Coordinator) discoverAndDispatch(ctx context.Context, r *run) (uint64, status.Counts, bool) {
	if r.signals.Stopped() {
		return 0, status.Counts{}, false
	}

	n := c.cycleSeq.Add(1)
	logger := zerolog.Ctx(ctx).With().Uint64("cycle", n).Logger()

	files, err := c.opts.Provider.ListFiles(logger.WithContext(ctx), r.params.InputFolder, r.params.Masks)
	if err != nil {
		if !r.signals.Stopped() {
			c.warn(fmt.Sprintf("Could not list %s", r.params.InputFolder), err)
		}
		return n, status.Counts{}, true
	}

	c.Publish(status.DiscoveredFiles(n, files))
	if len(files) == 0 {
		c.info("No matching files found")
	}

	counts := c.dispatch(logger.WithContext(ctx), r, n, files)
	if counts.NotStarted > 0 {
		c.info(fmt.Sprintf("Stopped before starting %d of %d files", counts.NotStarted, len(files)))
	}

	logger.Debug().Interface("counts", counts).Msg("cycle finished")
	return n, counts, true
}

// 📤 dispatch runs one transform worker per file on the runner
func (c *Coordinator) dispatch(ctx context.Context, r *run, cycle uint64, files []provider.DiscoveredFile) status.Counts {
	var mu sync.Mutex
	var counts status.Counts

	record := func(o status.Outcome) {
		mu.Lock()
		counts.Add(o)
		mu.Unlock()
	}

	logger := zerolog.Ctx(ctx)
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, func(ctx context.Context) {
			c.cycles.WorkerStarted()
			defer c.cycles.WorkerFinished()

			w, err := transform.New(transform.Item{Cycle: cycle, File: f}, transform.Options{
				Key:              r.params.Key,
				Conflict:         r.params.Conflict,
				DeleteSource:     r.params.DeleteSource,
				OutputFolder:     r.params.OutputFolder,
				Signals:          r.signals,
				Sink:             c,
				Logger:           logger,
				BlockSize:        c.opts.BlockSize,
				ProgressInterval: c.opts.ProgressInterval,
				PausePoll:        c.opts.PausePoll,
			})
			if err != nil {
				c.warn(fmt.Sprintf("Could not create worker for %s", f.Path), err)
				c.Publish(status.WorkerFinished(cycle, f, status.OutcomeOpenFailed))
				record(status.OutcomeOpenFailed)
				return
			}
			record(w.Run(ctx))
		})
	}

	started := c.runner.Run(ctx, jobs, func() bool {
		return r.signals.Stopped() || ctx.Err() != nil
	})

	mu.Lock()
	defer mu.Unlock()
	counts.NotStarted = len(files) - started
	return counts
}
