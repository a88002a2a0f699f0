// Package promhooks exports cache events as Prometheus metrics.
//
//	regioncache_keys_total{op,region,result}
//	regioncache_operation_duration_seconds{op,region}
//	regioncache_backend_failures_total{op,region}
//
// result is "hit" or "miss" for reads, "stored" for writes and "removed"
// for removes. Region values become label values; use Options.Region to
// fold high-cardinality regions.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/regioncache"
)

const defaultNamespace = "regioncache"

type Options struct {
	Namespace string // "" => "regioncache"
	Buckets   []float64
	// Region maps a region to its label value; nil keeps it as is and
	// the default region becomes "default".
	Region func(string) string
}

type Hooks struct {
	keys     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
	region   func(string) string
}

var _ regioncache.Hooks = (*Hooks)(nil)

// New registers the collectors with reg and panics if they are already
// registered there. A nil reg means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, opts Options) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := opts.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		// 0.5ms .. ~4s
		buckets = prometheus.ExponentialBuckets(0.0005, 2, 14)
	}
	region := opts.Region
	if region == nil {
		region = func(r string) string {
			if r == "" {
				return "default"
			}
			return r
		}
	}

	f := promauto.With(reg)
	return &Hooks{
		keys: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "keys_total",
			Help:      "Keys handled by cache operations, by outcome.",
		}, []string{"op", "region", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "operation_duration_seconds",
			Help:      "Store round-trip time of cache operations.",
			Buckets:   buckets,
		}, []string{"op", "region"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "backend_failures_total",
			Help:      "Store failures seen by cache operations.",
		}, []string{"op", "region"}),
		region: region,
	}
}

func (h *Hooks) Fetched(region string, requested, hits int, elapsed time.Duration) {
	r := h.region(region)
	op := string(regioncache.OpGet)
	h.keys.WithLabelValues(op, r, "hit").Add(float64(hits))
	h.keys.WithLabelValues(op, r, "miss").Add(float64(requested - hits))
	h.duration.WithLabelValues(op, r).Observe(elapsed.Seconds())
}

func (h *Hooks) Stored(region string, count int, elapsed time.Duration) {
	r := h.region(region)
	op := string(regioncache.OpSet)
	h.keys.WithLabelValues(op, r, "stored").Add(float64(count))
	h.duration.WithLabelValues(op, r).Observe(elapsed.Seconds())
}

func (h *Hooks) Removed(region string, count int, elapsed time.Duration) {
	r := h.region(region)
	op := string(regioncache.OpRemove)
	h.keys.WithLabelValues(op, r, "removed").Add(float64(count))
	h.duration.WithLabelValues(op, r).Observe(elapsed.Seconds())
}

func (h *Hooks) BackendFailed(op regioncache.Op, region string, _ int, _ error) {
	h.failures.WithLabelValues(string(op), h.region(region)).Inc()
}
