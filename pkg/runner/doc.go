/*
Package runner implements the dispatch loop of a kiteflow plugin.

It acts as the bridge between an event source (stdin, a Redis queue) and the
Engine. Events are pulled and dispatched strictly one at a time; an optional
DistributedLocker extends that guarantee across processes sharing one queue.

# Usage

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithLocker(redis.NewLocker(adapter, ""), "dispatch", 30*time.Second),
	)

	stats, err := r.Run(ctx, engine, adapter)
*/
package runner
