// Package sloghooks turns cache events into log/slog records. Successful
// calls are logged at Debug and can be sampled; store failures are always
// logged at Warn.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/regioncache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	FetchEvery uint64
	StoreEvery uint64
	// Hash region names (SHA-256 prefix) when they carry tenant data.
	HashRegions bool
	// Optional region redactor; wins over HashRegions.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	fetchCtr atomic.Uint64
	storeCtr atomic.Uint64
}

var _ regioncache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) region(r string) string {
	switch {
	case h.opts.Redact != nil:
		return h.opts.Redact(r)
	case h.opts.HashRegions && r != "":
		sum := sha256.Sum256([]byte(r))
		return hex.EncodeToString(sum[:8])
	}
	return r
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Fetched(region string, requested, hits int, elapsed time.Duration) {
	if h.l == nil || !sample(h.opts.FetchEvery, &h.fetchCtr) {
		return
	}
	h.l.Debug("regioncache.fetched",
		"region", h.region(region),
		"requested", requested,
		"hits", hits,
		"elapsed", elapsed)
}

func (h *Hooks) Stored(region string, count int, elapsed time.Duration) {
	if h.l == nil || !sample(h.opts.StoreEvery, &h.storeCtr) {
		return
	}
	h.l.Debug("regioncache.stored",
		"region", h.region(region),
		"count", count,
		"elapsed", elapsed)
}

func (h *Hooks) Removed(region string, count int, elapsed time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Debug("regioncache.removed",
		"region", h.region(region),
		"count", count,
		"elapsed", elapsed)
}

func (h *Hooks) BackendFailed(op regioncache.Op, region string, keys int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("regioncache.backend_failed",
		"op", string(op),
		"region", h.region(region),
		"keys", keys,
		"err", err)
}
