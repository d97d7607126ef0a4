package orchestrator

import "time"

// nowFunc is overridable in tests that need deterministic latency
// measurements; production code always uses time.Now.
var nowFunc = time.Now

func elapsedMs(start time.Time) uint64 {
	return uint64(nowFunc().Sub(start).Milliseconds())
}
