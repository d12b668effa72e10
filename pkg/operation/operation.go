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
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xorbatch/pkg/config"
	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/state"
	"github.com/walteh/xorbatch/pkg/status"
)

// ⏰ TickerFunc starts a periodic tick source and returns its channel and a
// function that stops it
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// SystemTicker is the default TickerFunc, backed by time.NewTicker
func SystemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// 🎮 Controller is the operator-facing surface of a Coordinator
type Controller interface {
	// Start validates params and, when valid, begins a run in the background
	Start(ctx context.Context, params config.RunParameters) config.ValidationResult
	// Pause suspends every worker of the current run at its next block boundary
	Pause()
	// Resume undoes Pause
	Resume()
	// Stop ends the current run; no new cycle or worker starts afterwards
	Stop()
	// Events is the stream of everything the run reports
	Events() <-chan status.Event
}

// 🔧 Options contains configuration for the coordinator
type Options struct {
	// Provider discovers input files (required)
	Provider provider.Provider
	// Logger is optional; defaults to a no-op logger
	Logger *zerolog.Logger

	// BlockSize is the transform block size; defaults to 4 MiB
	BlockSize int
	// Ceiling is the most workers running at once; defaults to GOMAXPROCS*4
	Ceiling int
	// PollInterval is how often the feeder retries a full pool
	PollInterval time.Duration
	// PausePoll is how often a paused worker checks for resume or stop
	PausePoll time.Duration
	// ProgressInterval is the minimum gap between progress events of a file
	ProgressInterval time.Duration
	// Ticker drives timer runs; defaults to SystemTicker
	Ticker TickerFunc
}

// 🏭 New creates a new coordinator with the given options
func New(opts Options) (*Coordinator, error) {
	if opts.Provider == nil {
		return nil, errors.Errorf("provider is required")
	}
	if opts.Ticker == nil {
		opts.Ticker = SystemTicker
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	c := &Coordinator{
		opts:    opts,
		logger:  logger,
		bus:     status.NewBus(&logger),
		tracker: status.NewTracker(&logger),
		runner:  NewRunner(&logger, opts.Ceiling, opts.PollInterval),
	}
	return c, nil
}

// 🎮 Coordinator owns the run lifecycle: validation, discovery, dispatch and
// the operator controls.
type Coordinator struct {
	opts    Options
	logger  zerolog.Logger
	bus     *status.Bus
	tracker *status.Tracker
	runner  *Runner

	cycles   state.Cycles
	cycleSeq atomic.Uint64

	mu      sync.Mutex
	current *run

	// every feeder, timer loop and cycle goroutine
	wg sync.WaitGroup
}

var _ Controller = (*Coordinator)(nil)

// run is one Start: a parameter snapshot and its own signals
type run struct {
	params  config.RunParameters
	signals *state.Signals
	cancel  context.CancelFunc
}

func (r *run) stop() bool {
	if !r.signals.StopFirst() {
		return false
	}
	r.cancel()
	return true
}

// Publish sends an event to the tracker and then to the event stream
func (c *Coordinator) Publish(e status.Event) {
	c.tracker.Publish(e)
	c.bus.Publish(e)
}

// 🚀 Start validates params. An invalid set is published as ValidationFailed
// and returned, and nothing else changes. A valid set stops any previous run
// and starts a new one in the background.
func (c *Coordinator) Start(ctx context.Context, params config.RunParameters) config.ValidationResult {
	if res := params.Validate(); !res.OK() {
		c.logger.Warn().Str("invalid", res.String()).Msg("rejected run parameters")
		c.Publish(status.ValidationFailed(res))
		return res
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.stop() {
		c.info("Previous run stopped")
	}

	runCtx, cancel := context.WithCancel(c.logger.WithContext(ctx))
	r := &run{
		params:  params,
		signals: state.NewSignals(),
		cancel:  cancel,
	}
	c.current = r

	c.info(fmt.Sprintf("Started: %s", params))

	c.wg.Add(1)
	if params.Treatment.Mode == config.Timer {
		go func() {
			defer c.wg.Done()
			c.timerLoop(runCtx, r)
		}()
	} else {
		go func() {
			defer c.wg.Done()
			c.cycle(runCtx, r, false)
			// the run is over; controls no longer apply to it
			r.signals.Stop()
			cancel()
		}()
	}

	return nil
}

// ⏸️ Pause suspends workers of the current run
func (c *Coordinator) Pause() {
	if r := c.active(); r != nil && !r.signals.Paused() {
		r.signals.Pause()
		c.info("Paused")
	}
}

// ▶️ Resume resumes workers of the current run
func (c *Coordinator) Resume() {
	if r := c.active(); r != nil && r.signals.Paused() {
		r.signals.Resume()
		c.info("Resumed")
	}
}

// 🛑 Stop ends the current run and disarms its timer. Workers exit at their
// next block boundary, leaving partial output.
func (c *Coordinator) Stop() {
	if r := c.active(); r != nil && r.stop() {
		c.info("Stopped")
	}
}

// Events returns the event stream. It must be drained.
func (c *Coordinator) Events() <-chan status.Event {
	return c.bus.Out()
}

// ⏳ Wait blocks until every goroutine and worker started so far has exited
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Done reports whether nothing is running
func (c *Coordinator) Done() bool {
	return c.cycles.Active() == 0 && c.cycles.Workers() == 0
}

// Close stops the current run, waits for it and closes the event stream
func (c *Coordinator) Close() {
	c.Stop()
	c.Wait()
	c.bus.Close()
}

// 📊 Snapshot returns aggregated progress
func (c *Coordinator) Snapshot() status.Summary {
	return c.tracker.Snapshot()
}

// active returns the current run, or nil once it has stopped or finished
func (c *Coordinator) active() *run {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.signals.Stopped() {
		return nil
	}
	return c.current
}

func (c *Coordinator) info(text string) {
	c.logger.Info().Msg(text)
	c.bus.Publish(status.Log(status.LevelInfo, text))
}

func (c *Coordinator) warn(text string, err error) {
	if err != nil {
		c.logger.Warn().Err(err).Msg(text)
		text = fmt.Sprintf("%s (%v)", text, err)
	} else {
		c.logger.Warn().Msg(text)
	}
	c.bus.Publish(status.Log(status.LevelWarn, text))
}
