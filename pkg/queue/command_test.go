package queue

import (
	"testing"
	"time"
)

func writeCmd(id, size int) Command {
	return Command{Action: ActionWritePacket, Packet: &fakePacket{id: id, sz: size}}
}

func cmdID(c Command) int {
	return c.Packet.(*fakePacket).id
}

func TestCommandSizeByAction(t *testing.T) {
	wc := writeCmd(1, 123)
	if wc.Size() != 123 {
		t.Fatalf("write-packet Size() = %d, want 123", wc.Size())
	}
	dc := Command{Action: ActionDisconnect}
	if dc.Size() != 0 {
		t.Fatalf("disconnect Size() = %d, want 0", dc.Size())
	}
}

func TestCommandQueueRejectsOversizedCommand(t *testing.T) {
	q := NewCommandQueue(100, false)
	if q.Enqueue(writeCmd(1, 200), nil) {
		t.Fatalf("Enqueue() should reject a command larger than threshold")
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after rejection", q.Len())
	}
}

// Scenario S5: threshold=1024, throttle=false, four 400-byte commands
// submitted quickly; at steady state byte-size <= 1024 and exactly the
// oldest commands were dropped.
func TestCommandQueueNonThrottleTrimsFromHead(t *testing.T) {
	q := NewCommandQueue(1024, false)
	for i := 1; i <= 4; i++ {
		q.Enqueue(writeCmd(i, 400), nil)
	}

	if q.ByteSize() > 1024 {
		t.Fatalf("ByteSize() = %d, exceeds threshold 1024", q.ByteSize())
	}

	batch := q.DequeueBatch(10)
	if len(batch) != 2 {
		t.Fatalf("got %d surviving commands, want 2", len(batch))
	}
	if cmdID(batch[0]) != 3 || cmdID(batch[1]) != 4 {
		t.Fatalf("surviving commands = [%d, %d], want [3, 4]", cmdID(batch[0]), cmdID(batch[1]))
	}
}

// Invariant 3: non-throttle enqueue never blocks.
func TestCommandQueueNonThrottleNeverBlocks(t *testing.T) {
	q := NewCommandQueue(100, false)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			q.Enqueue(writeCmd(i, 90), nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("non-throttle Enqueue blocked")
	}
}

// Invariant 2: throttle mode blocks the enqueuing caller until room appears
// (via a DequeueBatch elsewhere), and never drops.
func TestCommandQueueThrottleBlocksUntilRoom(t *testing.T) {
	q := NewCommandQueue(500, true)
	failed := func() bool { return false }

	if !q.Enqueue(writeCmd(1, 400), failed) {
		t.Fatalf("first Enqueue() should succeed")
	}

	blocked := make(chan struct{})
	go func() {
		q.Enqueue(writeCmd(2, 400), failed) // would exceed 500, must wait
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatalf("throttled Enqueue() returned before room was made")
	case <-time.After(100 * time.Millisecond):
	}

	batch := q.DequeueBatch(1)
	if len(batch) != 1 || cmdID(batch[0]) != 1 {
		t.Fatalf("expected to dequeue command 1 first")
	}

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatalf("throttled Enqueue() never unblocked after room was made")
	}

	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (command 2 enqueued, nothing dropped)", q.Len())
	}
}

func TestCommandQueueEnqueueHeadOrdering(t *testing.T) {
	q := NewCommandQueue(10000, false)
	q.Enqueue(writeCmd(1, 10), nil)
	q.Enqueue(writeCmd(2, 10), nil)
	q.EnqueueHead(writeCmd(99, 10))

	batch := q.DequeueBatch(10)
	if len(batch) != 3 || cmdID(batch[0]) != 99 {
		t.Fatalf("EnqueueHead() command should be dequeued first, got %v", batch)
	}
}

func TestCommandQueueStopUnblocksDequeue(t *testing.T) {
	q := NewCommandQueue(1000, false)
	done := make(chan []Command)
	go func() {
		done <- q.DequeueBatch(10)
	}()

	select {
	case <-done:
		t.Fatalf("DequeueBatch() returned before Stop() on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.Stop()
	select {
	case batch := <-done:
		if batch != nil {
			t.Fatalf("DequeueBatch() after Stop() on empty queue = %v, want nil", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("DequeueBatch() never unblocked after Stop()")
	}
}
