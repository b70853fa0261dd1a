package protocol

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is the error taxonomy surfaced to listeners (§7).
type Kind string

const (
	KindProtocolError      Kind = "protocol-error"
	KindInvalidConnections Kind = "invalid-connections"
	KindIO                 Kind = "io"
)

// Error is the typed error every protocol and facade operation reports
// through listeners, carrying the protocol name and its current options
// snapshot per §4.9 ("protocol-error carrying name + options snapshot").
type Error struct {
	Kind            Kind
	ProtocolName    string
	OptionsSnapshot string
	Err             error
}

func (e *Error) Error() string {
	if e.ProtocolName == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s(%s): %v", e.Kind, e.ProtocolName, e.OptionsSnapshot, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with pkgerrors.Wrap (preserving a stack trace the way
// the teacher's error paths do) and attaches the protocol identity.
func NewError(kind Kind, protocolName, optionsSnapshot, message string, err error) *Error {
	return &Error{
		Kind:            kind,
		ProtocolName:    protocolName,
		OptionsSnapshot: optionsSnapshot,
		Err:             pkgerrors.Wrap(err, message),
	}
}
