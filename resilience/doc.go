// Package resilience wraps a store.Store with a circuit breaker or with
// retries. Both decorators forward DeleteKeys when the wrapped store
// supports it and treat it as a no-op otherwise.
//
// A typical stack retries inside the breaker so one logical call counts
// once against the breaker:
//
//	st := resilience.NewBreaker(resilience.NewRetry(redisStore, resilience.RetryConfig{}), resilience.BreakerConfig{Name: "redis"})
package resilience
