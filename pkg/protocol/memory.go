package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/pattern"
	"github.com/gosmartlog/smartlog/pkg/queue"
)

func microsToTime(micros int64) time.Time {
	return time.UnixMicro(micros).UTC()
}

// memoryBinaryMarker opens a binary-mode dispatch stream; memoryTextBOM
// opens a text-mode one (§4.10). The exact on-wire binary packet layout is
// this implementation's own — no upstream wire-format reference survived
// distillation, so formatBinary below is a self-consistent encoding rather
// than a port of an external format.
var memoryBinaryMarker = []byte("SILF")
var memoryTextBOM = []byte{0xEF, 0xBB, 0xBF}

// packetWriter is satisfied by anything that can receive a forwarded
// packet — in particular *Base, letting the memory protocol dispatch
// directly into another protocol instance (§4.10).
type packetWriter interface {
	WritePacket(p packet.Packet) error
}

// MemoryTransport implements the memory protocol (§4.10): packets
// accumulate in a bounded in-process queue until dispatched to a sink.
type MemoryTransport struct {
	maxSize     int64
	astext      bool
	indent      bool
	patternSpec string
	formatter   *pattern.Formatter

	queue       *queue.Backlog
	indentLevel int
}

// NewMemoryTransport returns an unbound memory transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

func (m *MemoryTransport) Name() string { return "mem" }

func (m *MemoryTransport) RecognizedOptions() []string {
	return []string{"astext", "indent", "pattern", "maxsize"}
}

func (m *MemoryTransport) Bind(opts *options.Table) error {
	m.maxSize = opts.Size("maxsize", 1024)
	m.astext = opts.Bool("astext", false)
	m.indent = opts.Bool("indent", false)
	m.patternSpec = opts.String("pattern", "[%timestamp%] %level%: %title%")
	m.formatter = pattern.Compile(m.patternSpec)
	return nil
}

func (m *MemoryTransport) ImplConnect() error {
	m.queue = queue.NewBacklog(m.maxSize)
	m.indentLevel = 0
	return nil
}

func (m *MemoryTransport) ImplDisconnect() error {
	if m.queue != nil {
		m.queue.Clear()
	}
	m.queue = nil
	return nil
}

func (m *MemoryTransport) ImplWritePacket(p packet.Packet) error {
	if m.queue == nil {
		return fmt.Errorf("memory protocol: not connected")
	}
	m.queue.Push(p)
	return nil
}

// ImplDispatch interprets state per §4.10: an io.Writer is a byte sink
// that receives a header followed by every queued packet; a packetWriter
// (typically another protocol's *Base) receives the packets directly via
// WritePacket. Any other state is a no-op and leaves the queue untouched.
func (m *MemoryTransport) ImplDispatch(caption, action string, state any) error {
	if m.queue == nil {
		return fmt.Errorf("memory protocol: not connected")
	}

	switch sink := state.(type) {
	case io.Writer:
		return m.dispatchToWriter(sink)
	case packetWriter:
		return m.dispatchToProtocol(sink)
	default:
		return nil
	}
}

func (m *MemoryTransport) dispatchToWriter(w io.Writer) error {
	if m.astext {
		if _, err := w.Write(memoryTextBOM); err != nil {
			return fmt.Errorf("write text header: %w", err)
		}
	} else {
		if _, err := w.Write(memoryBinaryMarker); err != nil {
			return fmt.Errorf("write binary header: %w", err)
		}
	}

	m.indentLevel = 0
	for {
		p, ok := m.queue.Pop()
		if !ok {
			break
		}
		var err error
		if m.astext {
			_, err = io.WriteString(w, m.formatText(p)+"\r\n")
		} else {
			_, err = w.Write(m.formatBinary(p))
		}
		if err != nil {
			return fmt.Errorf("write packet: %w", err)
		}
	}
	return nil
}

func (m *MemoryTransport) dispatchToProtocol(dst packetWriter) error {
	for {
		p, ok := m.queue.Pop()
		if !ok {
			return nil
		}
		if err := dst.WritePacket(p); err != nil {
			return err
		}
	}
}

func (m *MemoryTransport) formatText(p packet.Packet) string {
	ctx := contextFor(p)
	if m.indent {
		if pf, ok := p.(*packet.ProcessFlow); ok && isLeaveFlow(pf.FlowType) && m.indentLevel > 0 {
			m.indentLevel--
		}
		ctx.Indent = m.indentLevel
		if pf, ok := p.(*packet.ProcessFlow); ok && isEnterFlow(pf.FlowType) {
			m.indentLevel++
		}
	}
	return m.formatter.Format(ctx)
}

func isEnterFlow(t packet.ProcessFlowType) bool {
	return t == packet.ProcessFlowEnterMethod || t == packet.ProcessFlowEnterProcess || t == packet.ProcessFlowEnterThread
}

func isLeaveFlow(t packet.ProcessFlowType) bool {
	return t == packet.ProcessFlowLeaveMethod || t == packet.ProcessFlowLeaveProcess || t == packet.ProcessFlowLeaveThread
}

// formatBinary is this implementation's own compact binary record: a
// level byte, a packet-type byte, a 4-byte big-endian length of the title's
// UTF-8 bytes, and then those bytes.
func (m *MemoryTransport) formatBinary(p packet.Packet) []byte {
	title := titleOf(p)
	var out []byte
	out = append(out, byte(p.Level()))
	out = append(out, byte(p.Type()))
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(title)))
	out = append(out, lenBuf...)
	out = append(out, []byte(title)...)
	return out
}

func titleOf(p packet.Packet) string {
	switch v := p.(type) {
	case *packet.LogEntry:
		return v.Title
	case *packet.Watch:
		return v.Name
	case *packet.ProcessFlow:
		return v.Title
	case *packet.LogHeader:
		return v.Content()
	default:
		return ""
	}
}

func contextFor(p packet.Packet) pattern.Context {
	ctx := pattern.Context{Level: p.Level()}
	switch v := p.(type) {
	case *packet.LogEntry:
		ctx.AppName = v.AppName
		ctx.HostName = v.HostName
		ctx.Session = v.SessionName
		ctx.Title = v.Title
		ctx.Color = v.Color
		ctx.LogEntryType = v.EntryType
		ctx.HasLogEntryType = true
		ctx.ViewerID = v.ViewerID
		ctx.HasViewerID = true
		ctx.Process = v.ProcessID
		ctx.Thread = v.ThreadID
		ctx.Timestamp = microsToTime(v.TimestampMicros)
	case *packet.Watch:
		ctx.Title = fmt.Sprintf("%s = %s", v.Name, v.Value)
		ctx.Timestamp = microsToTime(v.TimestampMicros)
	case *packet.ProcessFlow:
		ctx.Title = v.Title
		ctx.HostName = v.HostName
		ctx.Process = v.ProcessID
		ctx.Thread = v.ThreadID
		ctx.Timestamp = microsToTime(v.TimestampMicros)
	case *packet.LogHeader:
		ctx.AppName = v.AppName
		ctx.HostName = v.HostName
		ctx.Title = v.Content()
	}
	return ctx
}
