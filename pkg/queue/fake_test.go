package queue

import (
	"sync"

	"github.com/gosmartlog/smartlog/pkg/packet"
)

// fakePacket is a minimal packet.Packet used to exercise sizing and
// ordering logic without depending on a concrete packet type's layout.
type fakePacket struct {
	id         int
	sz         int
	level      packet.Level
	threadSafe bool
	mu         sync.Mutex
}

func (f *fakePacket) Type() packet.Type        { return packet.TypeLogEntry }
func (f *fakePacket) Level() packet.Level      { return f.level }
func (f *fakePacket) SetLevel(l packet.Level)  { f.level = l }
func (f *fakePacket) Size() int                { return f.sz }
func (f *fakePacket) ThreadSafe() bool         { return f.threadSafe }
func (f *fakePacket) SetThreadSafe(b bool)     { f.threadSafe = b }
func (f *fakePacket) Lock() {
	if f.threadSafe {
		f.mu.Lock()
	}
}
func (f *fakePacket) Unlock() {
	if f.threadSafe {
		f.mu.Unlock()
	}
}
