package protocol

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/pattern"
)

// TCPTransport implements the TCP protocol (§4.12): a length-framed
// connection dialed plain or over TLS, grounded on the teacher's
// net.Dial-based syslog backend.
type TCPTransport struct {
	host    string
	port    int
	useTLS  bool
	timeout time.Duration

	net *netTransport
}

// NewTCPTransport returns an unbound TCP transport.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{}
}

func (tc *TCPTransport) Name() string { return "tcp" }

func (tc *TCPTransport) RecognizedOptions() []string {
	return []string{"host", "port", "tls", "timeout", "pattern"}
}

func (tc *TCPTransport) Bind(opts *options.Table) error {
	tc.host = opts.String("host", "localhost")
	tc.port = opts.Int("port", 4228)
	tc.useTLS = opts.Bool("tls", false)
	tc.timeout = opts.Timespan("timeout", 30*time.Second)

	formatter := pattern.Compile(opts.String("pattern", "[%timestamp%] %level%: %title%"))
	tc.net = &netTransport{dial: tc.dial, formatter: formatter}
	return nil
}

func (tc *TCPTransport) dial() (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", tc.host, tc.port)
	dialer := &net.Dialer{Timeout: tc.timeout}
	if tc.useTLS {
		return tls.DialWithDialer(dialer, "tcp", addr, nil)
	}
	return dialer.Dial("tcp", addr)
}

func (tc *TCPTransport) ImplConnect() error                      { return tc.net.implConnect() }
func (tc *TCPTransport) ImplDisconnect() error                   { return tc.net.implDisconnect() }
func (tc *TCPTransport) ImplWritePacket(p packet.Packet) error   { return tc.net.implWritePacket(p) }
func (tc *TCPTransport) ImplDispatch(string, string, any) error  { return nil }
