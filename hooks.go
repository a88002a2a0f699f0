package regioncache

import "time"

// Hooks receive one event per completed client call, next to the log line.
// Implementations MUST be cheap and non-blocking (see hooks/async).
type Hooks interface {
	// A read finished. requested counts duplicates; hits <= requested.
	Fetched(region string, requested, hits int, elapsed time.Duration)
	// A write was persisted.
	Stored(region string, count int, elapsed time.Duration)
	// A remove finished.
	Removed(region string, count int, elapsed time.Duration)
	// The store failed. Called before the ErrorPolicy runs; never for cancellation.
	BackendFailed(op Op, region string, keys int, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Fetched(string, int, int, time.Duration) {}
func (NopHooks) Stored(string, int, time.Duration)       {}
func (NopHooks) Removed(string, int, time.Duration)      {}
func (NopHooks) BackendFailed(Op, string, int, error)    {}
