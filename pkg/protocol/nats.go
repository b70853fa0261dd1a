package protocol

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/pattern"
)

// NATSTransport is a bonus protocol (not named in §4, supplementing the
// pack's domain stack) that publishes formatted packets to a NATS subject,
// grounded on the teacher's nats-backend plugin example.
type NATSTransport struct {
	servers string
	subject string
	tls     bool

	formatter *pattern.Formatter
	conn      *nats.Conn
}

// NewNATSTransport returns an unbound NATS transport.
func NewNATSTransport() *NATSTransport {
	return &NATSTransport{}
}

func (nt *NATSTransport) Name() string { return "nats" }

func (nt *NATSTransport) RecognizedOptions() []string {
	return []string{"servers", "subject", "tls", "pattern"}
}

func (nt *NATSTransport) Bind(opts *options.Table) error {
	nt.servers = opts.String("servers", nats.DefaultURL)
	nt.subject = opts.String("subject", "smartlog")
	nt.tls = opts.Bool("tls", false)
	nt.formatter = pattern.Compile(opts.String("pattern", "[%timestamp%] %level%: %title%"))
	return nil
}

func (nt *NATSTransport) ImplConnect() error {
	natsOpts := []nats.Option{nats.Name("smartlog")}
	if nt.tls {
		natsOpts = append(natsOpts, nats.Secure())
	}
	conn, err := nats.Connect(nt.servers, natsOpts...)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	nt.conn = conn
	return nil
}

func (nt *NATSTransport) ImplDisconnect() error {
	if nt.conn != nil {
		nt.conn.Close()
		nt.conn = nil
	}
	return nil
}

func (nt *NATSTransport) ImplWritePacket(p packet.Packet) error {
	if nt.conn == nil {
		return fmt.Errorf("not connected")
	}
	payload := nt.formatter.Format(contextFor(p))
	return nt.conn.Publish(nt.subject, []byte(payload))
}

func (nt *NATSTransport) ImplDispatch(caption, action string, state any) error {
	if nt.conn == nil {
		return nil
	}
	return nt.conn.Flush()
}
