package protocol

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gosmartlog/smartlog/pkg/options"
)

// Constructor builds a fresh, unbound Transport for a named protocol.
type Constructor func() Transport

// Factory is the name -> constructor registry (§4.16), grounded on the
// teacher's plugin manager registry: registration is an atomic map update
// guarded by a single mutex.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewFactory returns a factory pre-registered with the built-in protocols:
// file, mem, tcp, pipe, nats, and text (a file alias that differs from file
// only in its name).
func NewFactory() *Factory {
	f := &Factory{constructors: make(map[string]Constructor)}
	f.Register("file", func() Transport { return NewFileTransport() })
	f.Register("mem", func() Transport { return NewMemoryTransport() })
	f.Register("tcp", func() Transport { return NewTCPTransport() })
	f.Register("pipe", func() Transport { return NewPipeTransport() })
	f.Register("text", func() Transport { return NewTextTransport() })
	f.Register("nats", func() Transport { return NewNATSTransport() })
	return f
}

// Register adds or replaces the constructor for name (case-insensitive).
func (f *Factory) Register(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[strings.ToLower(name)] = ctor
}

// Create instantiates and initializes a protocol by name using opts.
// Unknown names surface as invalid-connections (§4.16).
func (f *Factory) Create(name string, opts *options.Table) (*Base, error) {
	f.mu.RLock()
	ctor, ok := f.constructors[strings.ToLower(name)]
	f.mu.RUnlock()
	if !ok {
		return nil, &Error{
			Kind:         KindInvalidConnections,
			ProtocolName: name,
			Err:          fmt.Errorf("unknown protocol %q", name),
		}
	}

	transport := ctor()
	base := NewBase(transport)
	if err := base.Initialize(opts); err != nil {
		return nil, NewError(KindInvalidConnections, name, "", "initialize", err)
	}
	return base, nil
}
