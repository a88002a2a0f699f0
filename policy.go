package regioncache

// ErrorPolicy decides what a logged backend failure turns into.
// Resolve returns the error handed to the caller, or nil to degrade
// (reads become all-miss, writes become no-op).
type ErrorPolicy interface {
	Resolve(err *BackendError) error
}

// SwallowPolicy degrades every backend failure. It is the default.
type SwallowPolicy struct{}

func (SwallowPolicy) Resolve(*BackendError) error { return nil }

// ThrowPolicy returns every backend failure to the caller.
type ThrowPolicy struct{}

func (ThrowPolicy) Resolve(err *BackendError) error { return err }

// PolicyFor maps the ThrowOnError flag to a policy.
func PolicyFor(throwOnError bool) ErrorPolicy {
	if throwOnError {
		return ThrowPolicy{}
	}
	return SwallowPolicy{}
}
