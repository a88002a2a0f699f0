package regioncache

import (
	"fmt"
	"time"
)

func (c *Client[V]) logFetched(region string, keys []string, hits int, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	f := Fields{
		"op":         OpGet,
		"region":     region,
		"keys":       len(keys),
		"hits":       hits,
		"misses":     len(keys) - hits,
		"elapsed_ms": ms,
	}
	if len(keys) == 1 {
		outcome := "miss"
		if hits == 1 {
			outcome = "hit"
		}
		c.log.Info(fmt.Sprintf("cache get %s for key %q in %d ms", outcome, keys[0], ms), f)
		return
	}
	c.log.Info(fmt.Sprintf("cache get %d hits, %d misses of %d keys in %d ms",
		hits, len(keys)-hits, len(keys), ms), f)
}

func (c *Client[V]) logStored(region string, n int, exp time.Time, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	f := Fields{
		"op":         OpSet,
		"region":     region,
		"keys":       n,
		"elapsed_ms": ms,
	}
	msg := fmt.Sprintf("cache set %s in %d ms", plural(n), ms)
	if !exp.IsZero() {
		f["expires_at"] = exp
		msg += ", expires " + exp.Format(time.RFC3339)
	}
	c.log.Info(msg, f)
}

func (c *Client[V]) logRemoved(region string, n int, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	c.log.Info(fmt.Sprintf("cache remove %s in %d ms", plural(n), ms), Fields{
		"op":         OpRemove,
		"region":     region,
		"keys":       n,
		"elapsed_ms": ms,
	})
}

func plural(n int) string {
	if n == 1 {
		return "1 key"
	}
	return fmt.Sprintf("%d keys", n)
}
