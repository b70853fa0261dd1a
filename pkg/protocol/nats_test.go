package protocol

import (
	"testing"

	"github.com/gosmartlog/smartlog/internal/testsupport"
	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
)

func TestNATSTransportBindAppliesDefaults(t *testing.T) {
	nt := NewNATSTransport()
	tbl := options.New()
	if err := nt.Bind(tbl); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if nt.subject != "smartlog" {
		t.Fatalf("subject = %q, want default smartlog", nt.subject)
	}
	if nt.tls {
		t.Fatal("tls = true, want default false")
	}
}

func TestNATSTransportWritePacketWithoutConnectionErrors(t *testing.T) {
	nt := NewNATSTransport()
	tbl := options.New()
	if err := nt.Bind(tbl); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	e := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, "hello")
	if err := nt.ImplWritePacket(e); err == nil {
		t.Fatal("ImplWritePacket() before connect should error")
	}
}

// TestNATSTransportRoundTripsAgainstLiveBroker is the one real integration
// test in this package: it dials an actual NATS server and needs
// SMARTLOG_RUN_INTEGRATION_TESTS=true with a broker reachable at
// nats.DefaultURL, so it stays skipped in ordinary unit runs.
func TestNATSTransportRoundTripsAgainstLiveBroker(t *testing.T) {
	testsupport.SkipIfUnit(t, "skipping nats round-trip without a live broker")

	nt := NewNATSTransport()
	tbl := options.New()
	tbl.Set("subject", "smartlog.itest")
	if err := nt.Bind(tbl); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := nt.ImplConnect(); err != nil {
		t.Fatalf("ImplConnect() error = %v", err)
	}
	defer nt.ImplDisconnect()

	e := packet.NewLogEntry(packet.LevelMessage, packet.LogEntryEnterMethod, "integration")
	if err := nt.ImplWritePacket(e); err != nil {
		t.Fatalf("ImplWritePacket() error = %v", err)
	}
	if err := nt.ImplDispatch("nats", "", nil); err != nil {
		t.Fatalf("ImplDispatch() error = %v", err)
	}
}
