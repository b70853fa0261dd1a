package smartlog

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ConfigError reports a malformed connection string, configuration file, or
// dispatch target at the facade boundary (§4.14) — the facade-level
// counterpart to protocol.Error's KindInvalidConnections.
type ConfigError struct {
	Operation string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("smartlog: %s: %v", e.Operation, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newConfigError(op string, err error) *ConfigError {
	return &ConfigError{Operation: op, Err: pkgerrors.Wrap(err, op)}
}

// ProtocolError wraps an error surfaced by a protocol's listener, adding the
// facade-visible caption so a single error-handling callback can report
// which connection failed.
type ProtocolError struct {
	Caption string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("smartlog: protocol %q: %v", e.Caption, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
