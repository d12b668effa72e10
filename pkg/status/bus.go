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
	"sync"

	"github.com/rs/zerolog"
)

// 🚌 Bus is an unbounded FIFO of events. Publish never blocks; a pump
// goroutine hands events to Out in publish order.
type Bus struct {
	logger *zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool

	out chan Event
}

var _ Sink = (*Bus)(nil)

// 🏭 NewBus creates a bus and starts its pump. Events are mirrored to logger
// at debug level.
func NewBus(logger *zerolog.Logger) *Bus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	b := &Bus{
		logger: logger,
		out:    make(chan Event),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.pump()
	return b
}

// 📤 Publish queues e. Events published after Close are dropped.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, e)
	b.cond.Signal()
	b.mu.Unlock()

	b.mirror(e)
}

// Out is the stream of published events. It is closed once the bus is closed
// and every queued event has been received.
func (b *Bus) Out() <-chan Event {
	return b.out
}

// Close stops accepting events. Queued events are still delivered.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *Bus) pump() {
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.queue) == 0 {
			b.mu.Unlock()
			close(b.out)
			return
		}
		e := b.queue[0]
		b.queue[0] = Event{}
		b.queue = b.queue[1:]
		b.mu.Unlock()

		b.out <- e
	}
}

func (b *Bus) mirror(e Event) {
	ev := b.logger.Debug().Str("kind", e.Kind.String()).Uint64("cycle", e.Cycle)
	switch e.Kind {
	case KindLog:
		ev = ev.Str("level", e.Level.String()).Str("text", e.Text)
	case KindValidationFailed:
		ev = ev.Str("invalid", e.Invalid.String())
	case KindDiscoveredFiles:
		ev = ev.Int("files", len(e.Files))
	case KindFileProgress:
		ev = ev.Str("file", e.File.Path).Int("percent", e.Percent)
	case KindWorkerFinished:
		ev = ev.Str("file", e.File.Path).Str("outcome", e.Outcome.String())
	case KindCycleFinished:
		ev = ev.Interface("counts", e.Counts)
	}
	ev.Msg("event")
}
