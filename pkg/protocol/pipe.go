package protocol

import (
	"net"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/pattern"
)

// PipeTransport implements the pipe protocol (§4.13): a length-framed
// connection over a Unix-domain-socket path (the POSIX analogue of a named
// pipe), framed identically to the TCP protocol.
type PipeTransport struct {
	pipeName string
	net      *netTransport
}

// NewPipeTransport returns an unbound pipe transport.
func NewPipeTransport() *PipeTransport {
	return &PipeTransport{}
}

func (pp *PipeTransport) Name() string { return "pipe" }

func (pp *PipeTransport) RecognizedOptions() []string {
	return []string{"pipename", "pattern"}
}

func (pp *PipeTransport) Bind(opts *options.Table) error {
	pp.pipeName = opts.String("pipename", "smartlog")
	formatter := pattern.Compile(opts.String("pattern", "[%timestamp%] %level%: %title%"))
	pp.net = &netTransport{dial: pp.dial, formatter: formatter}
	return nil
}

func (pp *PipeTransport) dial() (net.Conn, error) {
	return net.Dial("unix", pp.pipeName)
}

func (pp *PipeTransport) ImplConnect() error                     { return pp.net.implConnect() }
func (pp *PipeTransport) ImplDisconnect() error                  { return pp.net.implDisconnect() }
func (pp *PipeTransport) ImplWritePacket(p packet.Packet) error  { return pp.net.implWritePacket(p) }
func (pp *PipeTransport) ImplDispatch(string, string, any) error { return nil }
