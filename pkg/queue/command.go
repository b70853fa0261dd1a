package queue

import (
	"sync"

	"github.com/gosmartlog/smartlog/pkg/packet"
)

// Action discriminates a scheduler command (§3, §4.8).
type Action int

const (
	ActionConnect Action = iota
	ActionWritePacket
	ActionDisconnect
	ActionDispatch
)

func (a Action) String() string {
	switch a {
	case ActionConnect:
		return "connect"
	case ActionWritePacket:
		return "write-packet"
	case ActionDisconnect:
		return "disconnect"
	case ActionDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// Command is one unit of scheduler work. Packet is populated only for
// ActionWritePacket; Dispatch carries protocol-specific state for
// ActionDispatch (e.g. the memory protocol's snapshot request, §4.10).
type Command struct {
	Action   Action
	Packet   packet.Packet
	Dispatch any
}

// Size is the command's accounted byte size: the packet's own Size() for a
// write-packet command, zero otherwise (§3).
func (c Command) Size() int64 {
	if c.Action == ActionWritePacket && c.Packet != nil {
		return int64(c.Packet.Size())
	}
	return 0
}

// CommandQueue is a bounded, ordered FIFO of scheduler commands (§4.8). It
// supports tail enqueue (normal submission), head enqueue (requeue on
// failed write), and threshold-based throttle-or-trim admission control.
type CommandQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	items     []Command
	size      int64
	threshold int64
	throttle  bool
	stopped   bool
}

// NewCommandQueue returns a command queue bounded at threshold bytes, using
// throttle (wait-for-room) or trim (drop-from-head) admission when full.
func NewCommandQueue(threshold int64, throttle bool) *CommandQueue {
	q := &CommandQueue{threshold: threshold, throttle: throttle}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// SetThreshold updates the byte-size cap.
func (q *CommandQueue) SetThreshold(threshold int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.threshold = threshold
}

// Enqueue appends cmd to the tail. isFailed reports whether the owning
// protocol is currently in a failed state — throttling only waits while the
// protocol is healthy, so a failed protocol never blocks its own scheduler
// goroutine (§4.8). Returns false if cmd is larger than the threshold and
// was rejected outright.
func (q *CommandQueue) Enqueue(cmd Command, isFailed func() bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	sz := cmd.Size()
	if sz > q.threshold {
		return false
	}

	for q.size+sz > q.threshold {
		if q.throttle && (isFailed == nil || !isFailed()) {
			q.cond.Wait()
			continue
		}
		if len(q.items) == 0 {
			break
		}
		q.dropHeadLocked()
	}

	q.items = append(q.items, cmd)
	q.size += sz
	q.cond.Broadcast()
	return true
}

// EnqueueHead reinserts cmd at the front of the queue, used by the
// scheduler to requeue a failed write so ordering is preserved (§4.8).
func (q *CommandQueue) EnqueueHead(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]Command{cmd}, q.items...)
	q.size += cmd.Size()
	q.cond.Broadcast()
}

// DequeueBatch blocks until at least one command is available or the queue
// is stopped, then returns up to max commands in FIFO order. Returns nil
// once stopped with an empty queue.
func (q *CommandQueue) DequeueBatch(max int) []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.stopped {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil
	}

	n := max
	if n > len(q.items) {
		n = len(q.items)
	}
	batch := make([]Command, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	for _, c := range batch {
		q.size -= c.Size()
	}
	q.cond.Broadcast()
	return batch
}

// Trim drops from the head until the queue has at least minFree bytes of
// headroom under threshold (§3).
func (q *CommandQueue) Trim(minFree int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.threshold-q.size < minFree && len(q.items) > 0 {
		q.dropHeadLocked()
	}
}

// Stop marks the queue stopped and wakes any blocked DequeueBatch call.
func (q *CommandQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.cond.Broadcast()
}

// Stopped reports whether Stop has been called.
func (q *CommandQueue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// Clear empties the queue.
func (q *CommandQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.size = 0
	q.cond.Broadcast()
}

// Len returns the number of queued commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// ByteSize returns the current accounted byte size.
func (q *CommandQueue) ByteSize() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *CommandQueue) dropHeadLocked() {
	c := q.items[0]
	q.items = q.items[1:]
	q.size -= c.Size()
}
