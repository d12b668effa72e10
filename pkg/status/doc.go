/*
Package status carries everything the core reports to the outside world.

	            +-------------+
	            |   Status    |
	            |  (events)   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|    Bus    |           | Tracker |
	|  (FIFO)   |           | (sums)  |
	+-----------+           +---------+

🎯 Purpose:
- Defines the event variants published by the coordinator and its workers
- Delivers them in order through an unbounded bus
- Aggregates progress into per-file and per-run summaries
- Formats progress and outcomes for terminal output

🔄 Flow:
1. Workers and the coordinator call Sink.Publish
2. The Bus queues the event without blocking the publisher
3. A pump goroutine hands events to Out() one at a time
4. A Tracker may observe the same events to answer Snapshot()

⚡ Event kinds:
- ValidationFailed: the rejected parameter set
- Log: a human readable line with a level
- DiscoveredFiles: the files found at the start of a cycle
- FileProgress: percent of one file, strictly increasing
- WorkerFinished: exactly once per worker, with its Outcome
- CycleSkipped: a timer tick arrived while a cycle was still draining
- CycleFinished: per-outcome counts once every worker of a cycle is done

The consumer must keep draining Out(). The queue grows without bound while
it does not.
*/
package status
