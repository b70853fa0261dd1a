// Package atomicx provides the atomic counter type internal/metrics stores
// as sync.Map values for per-protocol sent/byte/error tallies.
package atomicx

import "sync/atomic"

// Uint64 is an atomically accessed uint64 counter.
type Uint64 struct {
	value uint64
}

// NewUint64 returns a counter seeded at initial.
func NewUint64(initial uint64) *Uint64 { return &Uint64{value: initial} }

func (a *Uint64) Load() uint64            { return atomic.LoadUint64(&a.value) }
func (a *Uint64) Store(val uint64)        { atomic.StoreUint64(&a.value, val) }
func (a *Uint64) Add(delta uint64) uint64 { return atomic.AddUint64(&a.value, delta) }
