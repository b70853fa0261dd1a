package smartlog

import "github.com/gosmartlog/smartlog/pkg/packet"

// FilterListener inspects a packet before it reaches any protocol. Returning
// true cancels the packet — it is dropped and never forwarded (§4.14
// "invoke filter listeners; if any cancels, drop").
type FilterListener func(p packet.Packet) bool

// LogEntryListener observes every LogEntry packet that survives filtering.
type LogEntryListener func(*packet.LogEntry)

// WatchListener observes every Watch packet that survives filtering.
type WatchListener func(*packet.Watch)

// ProcessFlowListener observes every ProcessFlow packet that survives
// filtering.
type ProcessFlowListener func(*packet.ProcessFlow)

// ControlCommandListener observes every ControlCommand packet that survives
// filtering.
type ControlCommandListener func(*packet.ControlCommand)

// ErrorListener receives every error a protocol passes to its error
// listener, wrapped in a *ProtocolError. Errors returned by the facade's
// own methods are not passed to it.
type ErrorListener func(error)

// AddFilterListener registers fn to run before every send.
func (f *Facade) AddFilterListener(fn FilterListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filterListeners = append(f.filterListeners, fn)
}

// AddLogEntryListener registers fn to observe LogEntry packets.
func (f *Facade) AddLogEntryListener(fn LogEntryListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logEntryListeners = append(f.logEntryListeners, fn)
}

// AddWatchListener registers fn to observe Watch packets.
func (f *Facade) AddWatchListener(fn WatchListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchListeners = append(f.watchListeners, fn)
}

// AddProcessFlowListener registers fn to observe ProcessFlow packets.
func (f *Facade) AddProcessFlowListener(fn ProcessFlowListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processFlowListeners = append(f.processFlowListeners, fn)
}

// AddControlCommandListener registers fn to observe ControlCommand packets.
func (f *Facade) AddControlCommandListener(fn ControlCommandListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controlCommandListeners = append(f.controlCommandListeners, fn)
}

// AddErrorListener registers fn to receive protocol errors.
func (f *Facade) AddErrorListener(fn ErrorListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorListeners = append(f.errorListeners, fn)
}

func (f *Facade) runFilterListenersLocked(p packet.Packet) bool {
	for _, fn := range f.filterListeners {
		if fn(p) {
			return true
		}
	}
	return false
}

func (f *Facade) notifyKindListenersLocked(p packet.Packet) {
	switch v := p.(type) {
	case *packet.LogEntry:
		for _, fn := range f.logEntryListeners {
			fn(v)
		}
	case *packet.Watch:
		for _, fn := range f.watchListeners {
			fn(v)
		}
	case *packet.ProcessFlow:
		for _, fn := range f.processFlowListeners {
			fn(v)
		}
	case *packet.ControlCommand:
		for _, fn := range f.controlCommandListeners {
			fn(v)
		}
	}
}

func (f *Facade) notifyErrorListenersLocked(err error) {
	for _, fn := range f.errorListeners {
		fn(err)
	}
}
