// Package metrics collects packet/byte/error counters per protocol, adapted
// from the teacher's destination-oriented collector to the facade's
// protocol-routing domain (§4.14 "the facade feeds every send/drop/error
// through a metrics collector").
package metrics

import (
	"sync"

	"github.com/gosmartlog/smartlog/internal/atomicx"
)

// Collector accumulates counters the facade updates on every packet send,
// drop, and protocol error.
type Collector struct {
	sentByProtocol   sync.Map // map[string]*atomicx.Uint64
	bytesByProtocol  sync.Map // map[string]*atomicx.Uint64
	errorsByProtocol sync.Map // map[string]*atomicx.Uint64
	dropped          atomicx.Uint64
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// TrackSent increments the sent-packet and byte counters for protocol.
func (c *Collector) TrackSent(protocol string, bytes int) {
	counter(&c.sentByProtocol, protocol).Add(1)
	counter(&c.bytesByProtocol, protocol).Add(uint64(bytes))
}

// TrackDropped increments the facade-wide dropped-packet counter. The facade
// calls it when a filter listener cancels a packet; packets a session filters
// out (disabled facade, below-level) never reach the facade and are not
// counted.
func (c *Collector) TrackDropped() {
	c.dropped.Add(1)
}

// TrackError increments the error counter for protocol.
func (c *Collector) TrackError(protocol string) {
	counter(&c.errorsByProtocol, protocol).Add(1)
}

func counter(m *sync.Map, key string) *atomicx.Uint64 {
	val, _ := m.LoadOrStore(key, atomicx.NewUint64(0))
	return val.(*atomicx.Uint64)
}

// ProtocolMetrics is one protocol's snapshot counters.
type ProtocolMetrics struct {
	Sent   uint64
	Bytes  uint64
	Errors uint64
}

// Snapshot is a point-in-time readout of every tracked counter.
type Snapshot struct {
	Dropped   uint64
	Protocols map[string]ProtocolMetrics
}

// Snapshot returns the current counter values. Protocol entries with zero
// activity across all three counters are omitted.
func (c *Collector) Snapshot() Snapshot {
	out := Snapshot{
		Dropped:   c.dropped.Load(),
		Protocols: make(map[string]ProtocolMetrics),
	}

	get := func(name string) ProtocolMetrics {
		return out.Protocols[name]
	}

	c.sentByProtocol.Range(func(key, value any) bool {
		name := key.(string)
		m := get(name)
		m.Sent = value.(*atomicx.Uint64).Load()
		out.Protocols[name] = m
		return true
	})
	c.bytesByProtocol.Range(func(key, value any) bool {
		name := key.(string)
		m := get(name)
		m.Bytes = value.(*atomicx.Uint64).Load()
		out.Protocols[name] = m
		return true
	})
	c.errorsByProtocol.Range(func(key, value any) bool {
		name := key.(string)
		m := get(name)
		m.Errors = value.(*atomicx.Uint64).Load()
		out.Protocols[name] = m
		return true
	})

	return out
}

// Reset zeroes every counter.
func (c *Collector) Reset() {
	c.dropped.Store(0)
	c.sentByProtocol = sync.Map{}
	c.bytesByProtocol = sync.Map{}
	c.errorsByProtocol = sync.Map{}
}
