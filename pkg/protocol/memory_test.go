package protocol

import (
	"bytes"
	"testing"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
)

func newBoundMemory(t *testing.T, kv map[string]string) *MemoryTransport {
	t.Helper()
	tbl := options.New()
	for k, v := range kv {
		tbl.Set(k, v)
	}
	m := NewMemoryTransport()
	if err := m.Bind(tbl); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	return m
}

func TestMemoryDispatchToSinkTextMode(t *testing.T) {
	m := newBoundMemory(t, map[string]string{
		"maxsize": "1KB",
		"astext":  "true",
		"pattern": "%level%:%title%",
	})
	if err := m.ImplConnect(); err != nil {
		t.Fatalf("ImplConnect() error = %v", err)
	}

	for _, title := range []string{"a", "b", "c"} {
		e := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, title)
		if err := m.ImplWritePacket(e); err != nil {
			t.Fatalf("ImplWritePacket(%q) error = %v", title, err)
		}
	}

	var sink bytes.Buffer
	if err := m.ImplDispatch("", "snapshot", &sink); err != nil {
		t.Fatalf("ImplDispatch() error = %v", err)
	}

	want := "\xEF\xBB\xBFmessage:a\r\nmessage:b\r\nmessage:c\r\n"
	if sink.String() != want {
		t.Fatalf("dispatch output = %q, want %q", sink.String(), want)
	}
	if m.queue.Len() != 0 {
		t.Fatalf("queue.Len() = %d after dispatch, want 0", m.queue.Len())
	}
}

func TestMemoryDispatchToSinkBinaryMode(t *testing.T) {
	m := newBoundMemory(t, map[string]string{"maxsize": "1KB"})
	if err := m.ImplConnect(); err != nil {
		t.Fatalf("ImplConnect() error = %v", err)
	}
	e := packet.NewLogEntry(packet.LevelWarning, packet.LogEntryEnterMethod, "x")
	if err := m.ImplWritePacket(e); err != nil {
		t.Fatalf("ImplWritePacket() error = %v", err)
	}

	var sink bytes.Buffer
	if err := m.ImplDispatch("", "snapshot", &sink); err != nil {
		t.Fatalf("ImplDispatch() error = %v", err)
	}
	if !bytes.HasPrefix(sink.Bytes(), []byte("SILF")) {
		t.Fatalf("binary dispatch missing marker, got %q", sink.Bytes())
	}
}

// captureProtocol is a minimal packetWriter used to verify dispatch to
// another protocol instance.
type captureProtocol struct {
	packets []packet.Packet
}

func (c *captureProtocol) WritePacket(p packet.Packet) error {
	c.packets = append(c.packets, p)
	return nil
}

func TestMemoryDispatchToAnotherProtocol(t *testing.T) {
	m := newBoundMemory(t, map[string]string{"maxsize": "1KB"})
	if err := m.ImplConnect(); err != nil {
		t.Fatalf("ImplConnect() error = %v", err)
	}
	e1 := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, "one")
	e2 := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, "two")
	_ = m.ImplWritePacket(e1)
	_ = m.ImplWritePacket(e2)

	dst := &captureProtocol{}
	if err := m.ImplDispatch("", "forward", dst); err != nil {
		t.Fatalf("ImplDispatch() error = %v", err)
	}
	if len(dst.packets) != 2 {
		t.Fatalf("forwarded %d packets, want 2", len(dst.packets))
	}
	if m.queue.Len() != 0 {
		t.Fatalf("queue.Len() = %d after dispatch, want 0", m.queue.Len())
	}
}

func TestMemoryDispatchNoSinkIsNoop(t *testing.T) {
	m := newBoundMemory(t, map[string]string{"maxsize": "1KB"})
	if err := m.ImplConnect(); err != nil {
		t.Fatalf("ImplConnect() error = %v", err)
	}
	e := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, "x")
	_ = m.ImplWritePacket(e)

	if err := m.ImplDispatch("", "noop", 42); err != nil {
		t.Fatalf("ImplDispatch() error = %v", err)
	}
	if m.queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d after no-op dispatch, want 1", m.queue.Len())
	}
}

func TestMemoryIndentTracksEnterLeave(t *testing.T) {
	m := newBoundMemory(t, map[string]string{
		"maxsize": "1KB",
		"astext":  "true",
		"indent":  "true",
		"pattern": "%title%",
	})
	if err := m.ImplConnect(); err != nil {
		t.Fatalf("ImplConnect() error = %v", err)
	}

	enter := packet.NewProcessFlow(packet.ProcessFlowEnterMethod, "Main.Run")
	inner := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, "inside")
	leave := packet.NewProcessFlow(packet.ProcessFlowLeaveMethod, "Main.Run")
	_ = m.ImplWritePacket(enter)
	_ = m.ImplWritePacket(inner)
	_ = m.ImplWritePacket(leave)

	var sink bytes.Buffer
	if err := m.ImplDispatch("", "snapshot", &sink); err != nil {
		t.Fatalf("ImplDispatch() error = %v", err)
	}
	want := "\xEF\xBB\xBFMain.Run\r\n  inside\r\nMain.Run\r\n"
	if sink.String() != want {
		t.Fatalf("indent dispatch = %q, want %q", sink.String(), want)
	}
}
