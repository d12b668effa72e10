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
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xorbatch/pkg/config"
	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/status"
)

const testKey = "0x0123456789ABCDEF"

// 🔧 MockProvider is a mock implementation of the provider.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ListFiles(ctx context.Context, dir string, masks []string) ([]provider.DiscoveredFile, error) {
	result := m.Called(ctx, dir, masks)
	files, _ := result.Get(0).([]provider.DiscoveredFile)
	return files, result.Error(1)
}

// ⏰ fakeTicker hands out a channel the test fires by hand
type fakeTicker struct {
	ch       chan time.Time
	mu       sync.Mutex
	interval time.Duration
	stopped  atomic.Bool
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) start(d time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	f.interval = d
	f.mu.Unlock()
	return f.ch, func() { f.stopped.Store(true) }
}

func (f *fakeTicker) Interval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.ch <- time.Now():
	case <-time.After(5 * time.Second):
		t.Fatal("timer loop is not listening")
	}
}

func newCoordinator(t *testing.T, opts Options) *Coordinator {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.InfoLevel)
	if opts.Logger == nil {
		opts.Logger = &logger
	}
	if opts.Provider == nil {
		opts.Provider = provider.NewLocal()
	}
	if opts.PausePoll == 0 {
		opts.PausePoll = 5 * time.Millisecond
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Millisecond
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		for range c.Events() {
		}
	})
	return c
}

// waitFor reads events until one matches, returning everything read
func waitFor(t *testing.T, c *Coordinator, match func(status.Event) bool) []status.Event {
	t.Helper()
	var seen []status.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-c.Events():
			require.True(t, ok, "event stream closed early")
			seen = append(seen, e)
			if match(e) {
				return seen
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event, saw %d events", len(seen))
			return nil
		}
	}
}

func kind(k status.Kind) func(status.Event) bool {
	return func(e status.Event) bool { return e.Kind == k }
}

func filter(events []status.Event, k status.Kind) []status.Event {
	var out []status.Event
	for _, e := range events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func params(in, out string, conflict config.ConflictMode, mode config.TreatmentMode, mask string) config.RunParameters {
	return config.NewRunParameters(testKey, false, conflict, config.Treatment{Mode: mode}, out, in, mask)
}

func writeFiles(t *testing.T, dir string, content string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(content), 0644))
	}
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")
}

func TestStartRejectsInvalidKey(t *testing.T) {
	p := &MockProvider{}
	c := newCoordinator(t, Options{Provider: p})

	for _, key := range []string{"", "short", "0x0123456789ABCDEF0", "0x0123456789ABCDE"} {
		pr := params(t.TempDir(), t.TempDir(), config.Overwrite, config.OneTime, "*.txt")
		pr.Key = key

		res := c.Start(context.Background(), pr)
		assert.Equal(t, config.ValidationResult{config.InvalidKey}, res, "key %q", key)

		events := waitFor(t, c, kind(status.KindValidationFailed))
		assert.Equal(t, res, events[len(events)-1].Invalid)
	}

	c.Wait()
	p.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, c.Snapshot().CyclesRun)
}

func TestStartReportsEveryViolationInOrder(t *testing.T) {
	c := newCoordinator(t, Options{Provider: &MockProvider{}})
	missing := filepath.Join(t.TempDir(), "missing")

	pr := config.NewRunParameters("bad", false, config.Overwrite, config.Treatment{}, missing, "", " ;, ")
	res := c.Start(context.Background(), pr)

	assert.Equal(t, config.ValidationResult{
		config.InvalidOutputFolder,
		config.InvalidInputFolder,
		config.InvalidKey,
		config.InvalidMask,
	}, res)
}

func TestOneWorkerPerMatchingFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFiles(t, in, "payload", "a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "skip.png", "skip.txt.bak")
	require.NoError(t, os.Mkdir(filepath.Join(in, "dir.txt"), 0755))

	c := newCoordinator(t, Options{Ceiling: 2})
	res := c.Start(context.Background(), params(in, out, config.AddCounter, config.OneTime, "*.txt"))
	require.True(t, res.OK())

	events := waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	discovered := filter(events, status.KindDiscoveredFiles)
	require.Len(t, discovered, 1)
	assert.Len(t, discovered[0].Files, 5)

	finished := filter(events, status.KindWorkerFinished)
	paths := map[string]bool{}
	for _, e := range finished {
		assert.Equal(t, status.OutcomeCompleted, e.Outcome)
		paths[e.File.Path] = true
	}
	assert.Len(t, finished, 5, "exactly one worker per file")
	assert.Len(t, paths, 5)

	last := events[len(events)-1]
	assert.Equal(t, status.Counts{Completed: 5}, last.Counts)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	sum := c.Snapshot()
	assert.Equal(t, 1, sum.CyclesRun)
	assert.Equal(t, 100, sum.Percent)
	assert.True(t, c.Done())
}

func TestOverwriteTwiceRestoresOriginal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := filepath.Join(in, "file1.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello world!"), 0644))

	c := newCoordinator(t, Options{})
	pr := params(in, out, config.Overwrite, config.OneTime, "*.txt")

	require.True(t, c.Start(context.Background(), pr).OK())
	waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	once, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "Hello world!", string(once))

	require.True(t, c.Start(context.Background(), pr).OK())
	waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	twice, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", string(twice))
}

func TestAddCounterWithDeleteSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file1.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello world!"), 0644))

	c := newCoordinator(t, Options{})
	pr := params(dir, dir, config.AddCounter, config.OneTime, "*.txt")
	pr.DeleteSource = true

	require.True(t, c.Start(context.Background(), pr).OK())
	waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "file1_1.txt"))
}

func TestDiscoveryFailureEndsCycle(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	p := &MockProvider{}
	p.On("ListFiles", mock.Anything, in, []string{"txt"}).Return(nil, errors.New("folder vanished"))

	c := newCoordinator(t, Options{Provider: p})
	require.True(t, c.Start(context.Background(), params(in, out, config.Overwrite, config.OneTime, "txt")).OK())

	events := waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	assert.Empty(t, filter(events, status.KindDiscoveredFiles))
	assert.Equal(t, status.Counts{}, events[len(events)-1].Counts)

	var warned bool
	for _, e := range filter(events, status.KindLog) {
		if e.Level == status.LevelWarn {
			assert.Contains(t, e.Text, "folder vanished")
			warned = true
		}
	}
	assert.True(t, warned)
	p.AssertExpectations(t)
}

func TestTimerCoalescesTicks(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFiles(t, in, "payload", "a.txt")
	files, err := provider.NewLocal().ListFiles(context.Background(), in, []string{"txt"})
	require.NoError(t, err)

	p := &MockProvider{}
	p.On("ListFiles", mock.Anything, in, []string{"txt"}).Return(files, nil)

	ft := newFakeTicker()
	c := newCoordinator(t, Options{Provider: p, Ticker: ft.start})

	pr := params(in, out, config.AddCounter, config.Timer, "txt")
	require.True(t, c.Start(context.Background(), pr).OK())
	c.Pause()

	ft.tick(t)
	waitFor(t, c, kind(status.KindDiscoveredFiles))

	ft.tick(t)
	events := waitFor(t, c, kind(status.KindCycleSkipped))
	assert.Empty(t, filter(events, status.KindDiscoveredFiles), "a skipped tick discovers nothing")

	c.Resume()
	events = waitFor(t, c, kind(status.KindCycleFinished))
	assert.Equal(t, status.Counts{Completed: 1}, events[len(events)-1].Counts)

	c.Stop()
	c.Wait()

	p.AssertNumberOfCalls(t, "ListFiles", 1)
	assert.Equal(t, time.Second, ft.Interval(), "a zero interval runs every second")
	assert.True(t, ft.stopped.Load(), "stop disarms the timer")

	sum := c.Snapshot()
	assert.Equal(t, 1, sum.CyclesRun)
	assert.Equal(t, 1, sum.CyclesSkipped)
}

func TestTimerRunsACycleEveryTick(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFiles(t, in, "payload", "a.txt")

	ft := newFakeTicker()
	c := newCoordinator(t, Options{Ticker: ft.start})

	pr := params(in, out, config.AddCounter, config.Timer, "txt")
	pr.Treatment.IntervalSeconds = 5
	require.True(t, c.Start(context.Background(), pr).OK())

	for i := range 3 {
		ft.tick(t)
		events := waitFor(t, c, kind(status.KindCycleFinished))
		assert.Equal(t, uint64(i+1), events[len(events)-1].Cycle)
	}

	assert.Equal(t, 5*time.Second, ft.Interval())

	// the input folder is also the source of every cycle, so a.txt is
	// transformed again each time under a new counter name
	for _, n := range []string{"a.txt", "a_1.txt", "a_2.txt"} {
		assert.FileExists(t, filepath.Join(out, n))
	}
}

func TestStopMidFeed(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("f%02d.txt", i)
	}
	writeFiles(t, in, "some payload bytes", names...)
	files, err := provider.NewLocal().ListFiles(context.Background(), in, []string{"txt"})
	require.NoError(t, err)

	release := make(chan struct{})
	p := &MockProvider{}
	p.On("ListFiles", mock.Anything, in, []string{"txt"}).
		Run(func(mock.Arguments) { <-release }).
		Return(files, nil)

	c := newCoordinator(t, Options{Provider: p, Ceiling: 2})
	require.True(t, c.Start(context.Background(), params(in, out, config.AddCounter, config.OneTime, "txt")).OK())
	c.Pause()
	close(release)

	waitFor(t, c, kind(status.KindDiscoveredFiles))
	require.Eventually(t, func() bool { return c.cycles.Workers() == 2 }, 5*time.Second, time.Millisecond)

	c.Stop()
	events := waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	assert.Equal(t, status.Counts{Stopped: 2, NotStarted: 8}, events[len(events)-1].Counts)
	assert.Len(t, filter(events, status.KindWorkerFinished), 2)

	var logged bool
	for _, e := range filter(events, status.KindLog) {
		if e.Text == "Stopped before starting 8 of 10 files" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestStartStopsPreviousRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFiles(t, in, "payload", "a.txt")

	ft := newFakeTicker()
	c := newCoordinator(t, Options{Ticker: ft.start})

	require.True(t, c.Start(context.Background(), params(in, out, config.AddCounter, config.Timer, "txt")).OK())
	first := c.active()

	require.True(t, c.Start(context.Background(), params(in, out, config.AddCounter, config.OneTime, "txt")).OK())
	waitFor(t, c, kind(status.KindCycleFinished))

	assert.True(t, first.signals.Stopped())
	require.Eventually(t, ft.stopped.Load, 5*time.Second, time.Millisecond)
}

func TestFinishedOneTimeRunIgnoresControls(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFiles(t, in, "payload", "a.txt")

	c := newCoordinator(t, Options{})
	require.True(t, c.Start(context.Background(), params(in, out, config.AddCounter, config.OneTime, "txt")).OK())
	waitFor(t, c, kind(status.KindCycleFinished))
	c.Wait()

	assert.Nil(t, c.active(), "a finished run is no longer active")

	c.Pause()
	c.Resume()
	c.Stop()

	select {
	case e := <-c.Events():
		t.Fatalf("controls after the run ended should be silent, got %s %q", e.Kind, e.Text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestControlsWithoutRunAreNoOps(t *testing.T) {
	c := newCoordinator(t, Options{})
	c.Pause()
	c.Resume()
	c.Stop()
	c.Wait()
	assert.True(t, c.Done())
}

func TestStopIsIdempotent(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	ft := newFakeTicker()
	c := newCoordinator(t, Options{Ticker: ft.start})
	require.True(t, c.Start(context.Background(), params(in, out, config.Overwrite, config.Timer, "txt")).OK())

	c.Stop()
	c.Stop()
	c.Wait()

	events := waitFor(t, c, func(e status.Event) bool { return e.Kind == status.KindLog && e.Text == "Stopped" })
	assert.NotEmpty(t, events)

	select {
	case e := <-c.Events():
		assert.NotEqual(t, "Stopped", e.Text, "stop is reported once")
	case <-time.After(50 * time.Millisecond):
	}
}
