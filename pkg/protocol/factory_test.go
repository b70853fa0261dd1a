package protocol

import (
	"testing"

	"github.com/gosmartlog/smartlog/pkg/options"
)

func TestFactoryCreateUnknownProtocol(t *testing.T) {
	f := NewFactory()
	_, err := f.Create("bogus", options.New())
	if err == nil {
		t.Fatal("Create() with unknown name should fail")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *protocol.Error", err)
	}
	if perr.Kind != KindInvalidConnections {
		t.Fatalf("Kind = %v, want %v", perr.Kind, KindInvalidConnections)
	}
}

func TestFactoryCreateKnownProtocolsAllRegister(t *testing.T) {
	f := NewFactory()
	for _, name := range []string{"file", "mem", "tcp", "pipe", "text", "nats"} {
		base, err := f.Create(name, options.New())
		if err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
		if base == nil {
			t.Fatalf("Create(%q) returned nil base", name)
		}
	}
}

func TestFactoryRegisterOverridesExisting(t *testing.T) {
	f := NewFactory()
	called := false
	f.Register("mem", func() Transport {
		called = true
		return NewMemoryTransport()
	})
	if _, err := f.Create("MEM", options.New()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !called {
		t.Fatal("Register() did not override the mem constructor")
	}
}

func TestRoundTripOptionsSnapshotOnError(t *testing.T) {
	rt := &recordingTransport{name: "file"}
	b := NewBase(rt)
	opts := options.New()
	opts.Set("filename", `c:\log.sil`)
	opts.Set("caption", "primary")
	if err := b.Initialize(opts); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	snap := b.snapshotLocked()
	if snap == "" {
		t.Fatal("snapshot is empty")
	}
	parsed, err := options.ParseConnections(b.Caption() + "(" + snap + ")")
	if err != nil {
		t.Fatalf("ParseConnections(%q) error = %v", snap, err)
	}
	if len(parsed) != 1 || parsed[0].Name != "primary" {
		t.Fatalf("round-tripped snapshot parsed unexpectedly: %+v", parsed)
	}
}
