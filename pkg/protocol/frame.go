package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/pattern"
)

// writeFramed writes payload as a 4-byte big-endian length prefix followed
// by the payload bytes (§4.12), so a reader on the other end never has to
// guess where one packet's bytes end and the next begin.
func writeFramed(w *bufio.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return w.Flush()
}

// netTransport is the shared connect/write/disconnect logic for protocols
// that frame formatted packets over a net.Conn (TCP and pipe, §4.12–4.13).
type netTransport struct {
	dial func() (net.Conn, error)

	formatter *pattern.Formatter

	mu     sync.Mutex
	conn   net.Conn
	writer *bufio.Writer
}

func (n *netTransport) implConnect() error {
	conn, err := n.dial()
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	n.mu.Lock()
	n.conn = conn
	n.writer = bufio.NewWriter(conn)
	n.mu.Unlock()
	return nil
}

func (n *netTransport) implDisconnect() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	n.writer = nil
	return err
}

func (n *netTransport) implWritePacket(p packet.Packet) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.writer == nil {
		return fmt.Errorf("not connected")
	}
	payload := []byte(n.formatter.Format(contextFor(p)))
	return writeFramed(n.writer, payload)
}
