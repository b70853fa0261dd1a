// Package smartlog implements the facade (§4.14): the single entry point an
// application's sessions send packets through, owning the protocol list,
// the session manager, the variable table, and the metrics collector.
// Grounded on the teacher's Omni struct (pkg/omni/logger.go) — one mutex
// guarding a destination list and a fan-out dispatch loop — generalized
// from "destinations" to "protocols" and from direct writes to the
// protocol state machine in pkg/protocol.
package smartlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gosmartlog/smartlog/internal/metrics"
	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/protocol"
	"github.com/gosmartlog/smartlog/pkg/session"
)

// Facade is the logging entry point (§4.14). It satisfies session.Sink, so
// a *session.Manager can route every session's packets through it without
// pkg/session importing this package.
type Facade struct {
	mu sync.Mutex

	factory    *protocol.Factory
	protocols  []*protocol.Base
	connString string

	vars     *options.Variables
	Sessions *session.Manager

	appName       string
	hostName      string
	level         packet.Level
	defaultLevel  packet.Level
	enabled       bool
	multiThreaded bool

	filterListeners         []FilterListener
	logEntryListeners       []LogEntryListener
	watchListeners          []WatchListener
	processFlowListeners    []ProcessFlowListener
	controlCommandListeners []ControlCommandListener
	errorListeners          []ErrorListener

	metrics *metrics.Collector
}

// New returns a Facade with no configured protocols: enabled, threshold
// level Debug, default-level Message, app-name derived from os.Args[0], and
// host-name from os.Hostname() (falling back to "localhost").
func New() *Facade {
	f := &Facade{
		factory:      protocol.NewFactory(),
		vars:         options.NewVariables(),
		appName:      defaultAppName(),
		hostName:     defaultHostName(),
		level:        packet.LevelDebug,
		defaultLevel: packet.LevelMessage,
		enabled:      true,
		metrics:      metrics.NewCollector(),
	}
	f.Sessions = session.NewManager(f)
	return f
}

func defaultAppName() string {
	if len(os.Args) == 0 {
		return ""
	}
	return filepath.Base(os.Args[0])
}

func defaultHostName() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}

// AppName returns the configured application name.
func (f *Facade) AppName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appName
}

// SetAppName sets the application name stamped onto outgoing packets.
func (f *Facade) SetAppName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appName = name
}

// HostName returns the configured host name.
func (f *Facade) HostName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hostName
}

// Level returns the facade's minimum severity threshold.
func (f *Facade) Level() packet.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// SetLevel sets the facade's minimum severity threshold.
func (f *Facade) SetLevel(level packet.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = level
}

// DefaultLevel returns the facade's default packet level, used as the
// session filter floor (session.Sink's contract, §3). No session method
// stamps it onto a packet: each packet a session builds carries the level
// fixed by its method or by its packet constructor.
func (f *Facade) DefaultLevel() packet.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defaultLevel
}

// SetDefaultLevel sets the facade's default packet level.
func (f *Facade) SetDefaultLevel(level packet.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultLevel = level
}

// Enabled reports whether the facade currently accepts packets.
func (f *Facade) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// SetEnabled toggles the facade on or off. Enabling a disabled facade
// connects every configured protocol and disabling an enabled one
// disconnects them; the call returns once each Connect or Disconnect has.
// Setting the current state again does nothing.
func (f *Facade) SetEnabled(enabled bool) {
	f.mu.Lock()
	changed := f.enabled != enabled
	f.enabled = enabled
	protocols := append([]*protocol.Base(nil), f.protocols...)
	f.mu.Unlock()
	if !changed {
		return
	}
	for _, base := range protocols {
		if enabled {
			_ = base.Connect()
		} else {
			_ = base.Disconnect()
		}
	}
}

// MultiThreaded reports whether any configured protocol runs asynchronously,
// which is when packets must be made thread-safe before being handed off
// (§3 "Packet mutex on demand").
func (f *Facade) MultiThreaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.multiThreaded
}

// Factory returns the protocol factory backing this facade, letting callers
// register custom protocols before calling SetConnections (§4.16).
func (f *Facade) Factory() *protocol.Factory {
	return f.factory
}

// Captions returns the caption of every currently configured protocol, in
// connection-string order.
func (f *Facade) Captions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.protocols))
	for i, base := range f.protocols {
		out[i] = base.Caption()
	}
	return out
}

// SetVariable registers name for `$name$` expansion in connection strings
// passed to SetConnections, including a config file's `connections` value
// (§4.3); other config values are not expanded.
func (f *Facade) SetVariable(name, value string) {
	f.vars.Set(name, value)
}

// GetVariable returns the registered value for name, if any.
func (f *Facade) GetVariable(name string) (string, bool) {
	return f.vars.Get(name)
}

// UnsetVariable removes name from the variable table.
func (f *Facade) UnsetVariable(name string) {
	f.vars.Unset(name)
}

// Metrics returns a snapshot of the facade's packet/byte/error counters.
func (f *Facade) Metrics() metrics.Snapshot {
	return f.metrics.Snapshot()
}

// ResetMetrics zeroes every counter.
func (f *Facade) ResetMetrics() {
	f.metrics.Reset()
}

// SetConnections parses str (after variable expansion), instantiates one
// protocol per clause via the factory, and replaces the current connection
// list (§4.14). Malformed input or an unknown protocol name leaves the
// facade's existing connections untouched (partial state is rolled back) and
// returns a *ConfigError wrapping the parse or instantiate failure.
func (f *Facade) SetConnections(str string) error {
	expanded := f.vars.Expand(str)

	events, err := options.ParseConnections(expanded)
	if err != nil {
		return newConfigError("setConnections: parse", err)
	}

	built := make([]*protocol.Base, 0, len(events))
	for _, ev := range events {
		table, err := options.ParseOptions(ev.OptionsBlob)
		if err != nil {
			return newConfigError("setConnections: parse options for "+ev.Name, err)
		}
		base, err := f.factory.Create(ev.Name, table)
		if err != nil {
			return newConfigError("setConnections: create "+ev.Name, err)
		}
		built = append(built, base)
	}

	f.mu.Lock()
	old := f.protocols
	wasEnabled := f.enabled
	multiThreaded := false
	for _, base := range built {
		name := base.Caption()
		base.SetErrorListener(f.protocolErrorListener(name))
		if base.AsyncEnabled() {
			multiThreaded = true
		}
	}
	f.protocols = built
	f.connString = str
	f.multiThreaded = multiThreaded
	f.mu.Unlock()

	for _, base := range old {
		_ = base.Disconnect()
	}

	if wasEnabled {
		for _, base := range built {
			_ = base.Connect()
		}
	}

	return nil
}

func (f *Facade) protocolErrorListener(caption string) protocol.ErrorListener {
	return func(err *protocol.Error) {
		f.metrics.TrackError(caption)
		f.mu.Lock()
		listeners := append([]ErrorListener(nil), f.errorListeners...)
		f.mu.Unlock()
		for _, fn := range listeners {
			fn(&ProtocolError{Caption: caption, Err: err})
		}
	}
}

// LoadConnections reads the `connections` key from cfg and applies it via
// SetConnections, enabling the facade afterward unless doNotEnable is true
// (§4.14).
func (f *Facade) LoadConnections(cfg *options.ConfigFile, doNotEnable bool) error {
	str := cfg.Get("connections", "")
	if err := f.SetConnections(str); err != nil {
		return err
	}
	if !doNotEnable {
		f.SetEnabled(true)
	}
	return nil
}

// LoadConfigurationFile reads path and applies it via LoadConfiguration.
func (f *Facade) LoadConfigurationFile(path string) error {
	cfg, err := options.LoadConfigFile(path)
	if err != nil {
		return newConfigError("loadConfiguration: read", err)
	}
	return f.LoadConfiguration(cfg)
}

// LoadConfiguration applies appname, connections, enabled, level,
// defaultlevel, then the session manager's overrides, in the exact order
// §4.14 specifies: `enabled=false` is applied before replacing connections
// (so a disabled facade never transiently connects a protocol it's about to
// replace) and `enabled=true` is applied after (so newly built protocols
// connect only once they're actually the live set).
func (f *Facade) LoadConfiguration(cfg *options.ConfigFile) error {
	if cfg.Has("appname") {
		f.SetAppName(cfg.Get("appname", ""))
	}

	enabledSet := cfg.Has("enabled")
	enabled := parseConfigBool(cfg.Get("enabled", "true"), true)
	if enabledSet && !enabled {
		f.SetEnabled(false)
	}

	if cfg.Has("connections") {
		if err := f.SetConnections(cfg.Get("connections", "")); err != nil {
			return err
		}
	}

	if enabledSet && enabled {
		f.SetEnabled(true)
	}

	if cfg.Has("level") {
		table := options.New()
		table.Set("level", cfg.Get("level", ""))
		f.SetLevel(table.Level("level", f.Level()))
	}
	if cfg.Has("defaultlevel") {
		table := options.New()
		table.Set("defaultlevel", cfg.Get("defaultlevel", ""))
		f.SetDefaultLevel(table.Level("defaultlevel", f.DefaultLevel()))
	}

	f.Sessions.LoadOverrides(configFileToTable(cfg))

	return nil
}

func parseConfigBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

func configFileToTable(cfg *options.ConfigFile) *options.Table {
	t := options.New()
	for _, k := range cfg.Keys() {
		t.Set(k, cfg.Get(k, ""))
	}
	return t
}

// Dispatch locates the protocol whose caption matches name
// case-insensitively and forwards action/state to its Dispatch method
// (§4.14, §4.10). An unmatched caption returns a *ConfigError.
func (f *Facade) Dispatch(name, action string, state any) error {
	f.mu.Lock()
	var target *protocol.Base
	for _, base := range f.protocols {
		if strings.EqualFold(base.Caption(), name) {
			target = base
			break
		}
	}
	f.mu.Unlock()

	if target == nil {
		return newConfigError("dispatch", fmt.Errorf("no protocol with caption %q", name))
	}
	return target.Dispatch(action, state)
}

// Send implements session.Sink: it fills app-name/host-name where
// applicable, makes the packet thread-safe when any protocol is async,
// invokes filter listeners, and — unless cancelled — forwards the packet
// to every configured protocol and the matching per-kind listener (§4.14).
func (f *Facade) Send(p packet.Packet) error {
	f.mu.Lock()
	if f.multiThreaded {
		p.SetThreadSafe(true)
	}
	stampFields(p, f.appName, f.hostName)

	if f.runFilterListenersLocked(p) {
		f.metrics.TrackDropped()
		f.mu.Unlock()
		return nil
	}

	protocols := append([]*protocol.Base(nil), f.protocols...)
	f.notifyKindListenersLocked(p)
	f.mu.Unlock()

	size := p.Size()
	for _, base := range protocols {
		caption := base.Caption()
		// A write failure reaches the caller only through the protocol's
		// error listener; Send itself never returns it.
		if err := base.WritePacket(p); err != nil {
			f.metrics.TrackError(caption)
			continue
		}
		f.metrics.TrackSent(caption, size)
	}
	return nil
}

func stampFields(p packet.Packet, appName, hostName string) {
	switch v := p.(type) {
	case *packet.LogEntry:
		if v.AppName == "" {
			v.AppName = appName
		}
		if v.HostName == "" {
			v.HostName = hostName
		}
	case *packet.LogHeader:
		if v.AppName == "" {
			v.AppName = appName
		}
		if v.HostName == "" {
			v.HostName = hostName
		}
	}
}

// Shutdown disconnects every protocol, bounded by ctx (§5's concurrency
// note), grounded on the teacher's Manager.Shutdown(ctx).
func (f *Facade) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		f.mu.Lock()
		protocols := append([]*protocol.Base(nil), f.protocols...)
		f.mu.Unlock()

		var firstErr error
		for _, base := range protocols {
			if err := base.Disconnect(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		done <- firstErr
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
