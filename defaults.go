package regioncache

import "time"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// withDefaults fills every optional collaborator. An explicit ErrorPolicy
// wins over ThrowOnError.
func (o Options[V]) withDefaults() Options[V] {
	o.Logger = AtLevel(coalesce[Logger](o.Logger, NopLogger{}), o.LogLevel)
	o.Hooks = coalesce[Hooks](o.Hooks, NopHooks{})
	o.ErrorPolicy = coalesce[ErrorPolicy](o.ErrorPolicy, PolicyFor(o.ThrowOnError))
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
