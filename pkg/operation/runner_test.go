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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRespectsCeiling(t *testing.T) {
	r := NewRunner(nil, 3, time.Millisecond)
	assert.Equal(t, 3, r.Ceiling())

	var running, peak, done atomic.Int32
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = func(context.Context) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
		}
	}

	started := r.Run(context.Background(), jobs, func() bool { return false })
	assert.Equal(t, 20, started)
	assert.Equal(t, int32(20), done.Load(), "Run returns after every job")
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestRunnerStopsFeeding(t *testing.T) {
	r := NewRunner(nil, 1, time.Millisecond)

	var stop atomic.Bool
	var ran atomic.Int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) {
			if ran.Add(1) == 3 {
				stop.Store(true)
			}
		}
	}

	started := r.Run(context.Background(), jobs, stop.Load)
	assert.Equal(t, 3, started)
	assert.Equal(t, int32(3), ran.Load())
}

func TestRunnerStoppedWhilePoolFull(t *testing.T) {
	r := NewRunner(nil, 2, time.Millisecond)

	release := make(chan struct{})
	var stop atomic.Bool
	var entered sync.WaitGroup
	entered.Add(2)

	jobs := make([]Job, 6)
	for i := range jobs {
		jobs[i] = func(context.Context) {
			entered.Done()
			<-release
		}
	}

	result := make(chan int, 1)
	go func() { result <- r.Run(context.Background(), jobs, stop.Load) }()

	entered.Wait()
	stop.Store(true)
	close(release)

	select {
	case started := <-result:
		assert.Equal(t, 2, started)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not observe stop")
	}
}

func TestRunnerCeilingIsShared(t *testing.T) {
	r := NewRunner(nil, 2, time.Millisecond)

	var running, peak atomic.Int32
	job := func(context.Context) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
	}

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Run(context.Background(), []Job{job, job, job}, func() bool { return false })
		}()
	}
	wg.Wait()

	require.Positive(t, peak.Load())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestDefaultCeiling(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultCeiling(), 4)
	assert.Equal(t, DefaultCeiling(), NewRunner(nil, 0, 0).Ceiling())
}
