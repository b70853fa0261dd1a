// Package protocol implements the protocol base state machine (§4.9) and
// its concrete transports: memory (§4.10), file (§4.11), TCP (§4.12), pipe
// (§4.13), and the bonus NATS transport.
package protocol

import (
	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
)

// Transport is the protocol-specific half of a protocol (§4.9): the
// concrete connect/write/disconnect/dispatch behavior that Base's state
// machine drives. Every concrete protocol (memory, file, tcp, pipe, nats)
// implements this and embeds *Base.
type Transport interface {
	// Name identifies the transport for error reporting and the default
	// caption.
	Name() string

	// Bind extracts transport-specific options from opts. Called once
	// during Initialize, after Base has consumed the common options.
	Bind(opts *options.Table) error

	// RecognizedOptions lists the transport-specific option keys, used to
	// build the round-trip connection string (§9 invariant 6).
	RecognizedOptions() []string

	// ImplConnect establishes the underlying connection/handle.
	ImplConnect() error

	// ImplWritePacket writes one already-level-checked packet.
	ImplWritePacket(p packet.Packet) error

	// ImplDisconnect releases the underlying connection/handle. Must be
	// safe to call even if ImplConnect was never called or already failed.
	ImplDisconnect() error

	// ImplDispatch executes a custom, protocol-specific action (§4.10's
	// snapshot dispatch, for example).
	ImplDispatch(caption, action string, state any) error
}

// ErrorListener receives every translated protocol error (§4.9, §7).
type ErrorListener func(err *Error)
