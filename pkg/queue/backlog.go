// Package queue implements the size-bounded backlog queue (§4.7) and the
// scheduler command queue + worker loop (§4.8) that every protocol uses to
// defer and order packet delivery.
package queue

import "github.com/gosmartlog/smartlog/pkg/packet"

// backlogOverhead is the per-item bookkeeping cost added to a packet's own
// Size() when accounting against a backlog's byte budget (§4.7, §3).
const backlogOverhead = 24

// Backlog is a size-bounded FIFO of packets. It is not safe for concurrent
// use by itself — the protocol base (§4.9) holds its own lock around it,
// the same way the teacher's BatchWriter buffer is only ever touched with
// its mutex held.
type Backlog struct {
	max   int64
	items []packet.Packet
	size  int64
}

// NewBacklog returns an empty backlog bounded at maxBytes.
func NewBacklog(maxBytes int64) *Backlog {
	return &Backlog{max: maxBytes}
}

// Push appends p, then discards from the head until the total byte size is
// back within budget (§4.7).
func (b *Backlog) Push(p packet.Packet) {
	b.items = append(b.items, p)
	b.size += int64(p.Size()) + backlogOverhead
	for b.size > b.max && len(b.items) > 0 {
		b.dropHead()
	}
}

// Pop removes and returns the oldest packet, or false if empty.
func (b *Backlog) Pop() (packet.Packet, bool) {
	if len(b.items) == 0 {
		return nil, false
	}
	p := b.items[0]
	b.dropHead()
	return p, true
}

// Clear empties the backlog.
func (b *Backlog) Clear() {
	b.items = nil
	b.size = 0
}

// Len returns the number of buffered packets.
func (b *Backlog) Len() int {
	return len(b.items)
}

// Size returns the current accounted byte size (including overhead).
func (b *Backlog) Size() int64 {
	return b.size
}

func (b *Backlog) dropHead() {
	p := b.items[0]
	b.items = b.items[1:]
	b.size -= int64(p.Size()) + backlogOverhead
}
