/*
Package operation runs batches: it validates parameters, discovers files,
feeds workers to a bounded pool and answers the operator's controls.

	+-------------+
	| Coordinator |
	|  (Start)    |
	+------+------+
	       |
	+------+------+      +-------------+
	|   Cycle     | ---> |   Runner    |
	| (discovery) |      | (pool)      |
	+-------------+      +------+------+
	                            |
	                     +------+------+
	                     |  transform  |
	                     |  (workers)  |
	                     +-------------+

🎯 Purpose:
- Rejects invalid parameters with the full set of violations
- Runs one cycle (OneTime) or one cycle per timer tick (Timer)
- Starts exactly one worker per discovered file, never more than the ceiling at once
- Publishes every event on a single ordered stream

🔄 Cycle:
1. Discover matching files in the input folder
2. Publish DiscoveredFiles
3. Feed workers one at a time, polling while the pool is full
4. Wait for every started worker
5. Publish CycleFinished with per-outcome counts

⏰ Timer runs:
A tick that arrives while a cycle is still active is skipped and reported as
CycleSkipped. An interval of zero seconds runs every second.

🛑 Controls:
Pause, Resume and Stop only flip flags and never block. Stop also disarms
the timer and keeps the feeder from starting anything else. Starting a new
run stops the previous one first.

🔍 Example:

	c, err := operation.New(operation.Options{Provider: provider.NewLocal()})
	if err != nil {
		return err
	}
	defer c.Close()

	if res := c.Start(ctx, params); !res.OK() {
		return res.Err()
	}
	for e := range c.Events() {
		// render e
	}
*/
package operation
