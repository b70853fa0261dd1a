package protocol

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/queue"
)

// commonOptionKeys are the options every protocol accepts (§4.9), used to
// build the round-trip options snapshot attached to translated errors.
var commonOptionKeys = []string{
	"level", "reconnect", "reconnect.interval", "caption",
	"backlog.enabled", "backlog.queue", "backlog.flushon", "backlog.keepopen",
	"async.enabled", "async.queue", "async.throttle", "async.clearondisconnect",
}

type dispatchRequest struct {
	Caption string
	Action  string
	State   any
}

// Base implements the protocol state machine (§4.9) shared by every
// transport. Concrete protocols embed *Base and supply a Transport.
type Base struct {
	transport Transport

	mu sync.Mutex

	initialized      bool
	connected        bool
	failed           bool
	schedulerStarted bool

	level             packet.Level
	reconnectEnabled  bool
	reconnectInterval time.Duration
	caption           string
	keepOpen          bool
	lastReconnect     time.Time

	backlogEnabled  bool
	backlog         *queue.Backlog
	backlogFlushOn  packet.Level
	backlogKeepOpen bool

	asyncEnabled      bool
	asyncThreshold    int64
	asyncThrottle     bool
	clearOnDisconnect bool
	cmdQueue          *queue.CommandQueue
	scheduler         *queue.Scheduler

	optsSnapshot *options.Table

	onError ErrorListener
}

// NewBase returns an uninitialized Base driving t.
func NewBase(t Transport) *Base {
	return &Base{transport: t, onError: func(*Error) {}}
}

// SetErrorListener installs the listener that receives translated errors.
func (b *Base) SetErrorListener(fn ErrorListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn == nil {
		fn = func(*Error) {}
	}
	b.onError = fn
}

// Caption returns the protocol's dispatch-target identifier.
func (b *Base) Caption() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caption
}

// IsConnected reports the current connected flag.
func (b *Base) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// IsFailed reports the current failed flag.
func (b *Base) IsFailed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

// AsyncEnabled reports whether this protocol runs its scheduler.
func (b *Base) AsyncEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.asyncEnabled
}

// Initialize binds the common options (§4.9) and the transport's own
// options, exactly once; subsequent calls are no-ops.
func (b *Base) Initialize(opts *options.Table) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}

	b.level = opts.Level("level", packet.LevelDebug)
	b.reconnectEnabled = opts.Bool("reconnect", false)
	b.reconnectInterval = opts.Timespan("reconnect.interval", 0)
	b.caption = opts.String("caption", b.transport.Name())

	b.backlogEnabled = aliasBool(opts, "backlog.enabled", "backlog", false)
	b.backlog = queue.NewBacklog(opts.Size("backlog.queue", 2048*1024))
	b.backlogFlushOn = aliasLevel(opts, "backlog.flushon", "flushon", packet.LevelError)
	b.backlogKeepOpen = aliasBool(opts, "backlog.keepopen", "keepopen", false)
	b.keepOpen = !b.backlogEnabled || b.backlogKeepOpen

	b.asyncEnabled = opts.Bool("async.enabled", false)
	b.asyncThreshold = opts.Size("async.queue", 2048*1024)
	b.asyncThrottle = opts.Bool("async.throttle", true)
	b.clearOnDisconnect = opts.Bool("async.clearondisconnect", false)

	if err := b.transport.Bind(opts); err != nil {
		return err
	}

	if b.asyncEnabled {
		b.cmdQueue = queue.NewCommandQueue(b.asyncThreshold, b.asyncThrottle)
		batchSize := queue.DefaultBatchSize
		if b.reconnectEnabled {
			batchSize = queue.OrderedBatchSize
		}
		b.scheduler = queue.NewScheduler(b.cmdQueue, b, batchSize)
	}

	b.optsSnapshot = opts
	b.initialized = true
	return nil
}

func aliasBool(opts *options.Table, canonical, legacy string, def bool) bool {
	if opts.Has(canonical) {
		return opts.Bool(canonical, def)
	}
	return opts.Bool(legacy, def)
}

func aliasLevel(opts *options.Table, canonical, legacy string, def packet.Level) packet.Level {
	if opts.Has(canonical) {
		return opts.Level(canonical, def)
	}
	return opts.Level(legacy, def)
}

// Connect starts (or enqueues) a connection attempt.
func (b *Base) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.asyncEnabled {
		b.ensureSchedulerStartedLocked()
		b.cmdQueue.Enqueue(queue.Command{Action: queue.ActionConnect}, b.isFailedLocked)
		return nil
	}
	return b.connectSyncLocked()
}

func (b *Base) ensureSchedulerStartedLocked() {
	if b.scheduler != nil && !b.schedulerStarted {
		b.scheduler.Start()
		b.schedulerStarted = true
	}
}

func (b *Base) connectSyncLocked() error {
	if b.connected || !b.keepOpen {
		return nil
	}
	if err := b.transport.ImplConnect(); err != nil {
		b.resetLocked()
		e := NewError(KindProtocolError, b.caption, b.snapshotLocked(), "connect", err)
		b.onError(e)
		return e
	}
	b.connected = true
	b.failed = false
	return nil
}

// reconnectLocked implements §4.9's `reconnect()`: implReconnect defaults
// to implConnect; a too-recent prior attempt is a silent no-op.
func (b *Base) reconnectLocked() bool {
	if b.reconnectInterval > 0 && time.Since(b.lastReconnect) < b.reconnectInterval {
		return false
	}
	b.lastReconnect = time.Now()
	if err := b.transport.ImplConnect(); err != nil {
		b.resetLocked()
		return false
	}
	b.connected = true
	b.failed = false
	return true
}

// WritePacket routes p through the sync or async path per §4.9.
func (b *Base) WritePacket(p packet.Packet) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.Level() < b.level {
		return nil
	}

	if b.asyncEnabled {
		b.ensureSchedulerStartedLocked()
		b.cmdQueue.Enqueue(queue.Command{Action: queue.ActionWritePacket, Packet: p}, b.isFailedLocked)
		return nil
	}
	return b.writePacketSyncLocked(p)
}

func (b *Base) writePacketSyncLocked(p packet.Packet) error {
	if !b.connected && !b.reconnectEnabled && b.keepOpen {
		return nil
	}

	if b.backlogEnabled {
		if p.Level() >= b.backlogFlushOn && p.Level() != packet.LevelControl {
			if err := b.flushBacklogLocked(); err != nil {
				return err
			}
			return b.forwardLocked(p)
		}
		b.backlog.Push(p)
		return nil
	}

	return b.forwardLocked(p)
}

func (b *Base) flushBacklogLocked() error {
	for {
		p, ok := b.backlog.Pop()
		if !ok {
			return nil
		}
		if err := b.forwardLocked(p); err != nil {
			return err
		}
	}
}

// forwardLocked implements §4.9's "forward" semantics.
func (b *Base) forwardLocked(p packet.Packet) error {
	if !b.connected {
		if !b.keepOpen {
			if err := b.transport.ImplConnect(); err != nil {
				e := NewError(KindProtocolError, b.caption, b.snapshotLocked(), "connect", err)
				b.onError(e)
				return e
			}
			b.connected = true
			b.failed = false
		} else if !b.reconnectLocked() {
			e := NewError(KindProtocolError, b.caption, b.snapshotLocked(), "reconnect", fmt.Errorf("reconnect did not succeed"))
			b.onError(e)
			return e
		}
	}

	if b.connected {
		p.Lock()
		err := b.transport.ImplWritePacket(p)
		p.Unlock()
		if err != nil {
			b.resetLocked()
			e := NewError(KindProtocolError, b.caption, b.snapshotLocked(), "write", err)
			b.onError(e)
			return e
		}
	}

	if !b.keepOpen {
		_ = b.transport.ImplDisconnect()
		b.connected = false
	}
	return nil
}

// Disconnect tears down (or enqueues teardown of) the connection.
func (b *Base) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.asyncEnabled {
		if b.clearOnDisconnect && b.cmdQueue != nil {
			b.cmdQueue.Clear()
		}
		if b.cmdQueue != nil {
			b.cmdQueue.Enqueue(queue.Command{Action: queue.ActionDisconnect}, b.isFailedLocked)
		}
		if b.scheduler != nil && b.schedulerStarted {
			sched := b.scheduler
			b.mu.Unlock()
			sched.Stop()
			b.mu.Lock()
			b.schedulerStarted = false
		}
		return nil
	}

	b.disconnectLocked()
	return nil
}

func (b *Base) disconnectLocked() {
	if b.backlog != nil {
		b.backlog.Clear()
	}
	if b.connected {
		_ = b.transport.ImplDisconnect()
		b.connected = false
		b.lastReconnect = time.Now()
	}
}

func (b *Base) resetLocked() {
	b.failed = true
	b.lastReconnect = time.Now()
	b.disconnectLocked()
}

// Dispatch routes a custom action through the sync or async path (§4.9,
// §4.10).
func (b *Base) Dispatch(action string, state any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.asyncEnabled {
		b.ensureSchedulerStartedLocked()
		req := dispatchRequest{Caption: b.caption, Action: action, State: state}
		b.cmdQueue.Enqueue(queue.Command{Action: queue.ActionDispatch, Dispatch: req}, b.isFailedLocked)
		return nil
	}

	if err := b.transport.ImplDispatch(b.caption, action, state); err != nil {
		e := NewError(KindProtocolError, b.caption, b.snapshotLocked(), "dispatch", err)
		b.onError(e)
		return e
	}
	return nil
}

func (b *Base) snapshotLocked() string {
	if b.optsSnapshot == nil {
		return ""
	}
	keys := append(append([]string{}, commonOptionKeys...), b.transport.RecognizedOptions()...)
	return options.BuildOptions(b.optsSnapshot, keys)
}

func (b *Base) isFailedLocked() bool {
	return b.failed
}

// The methods below satisfy queue.Executor, letting a Base drive its own
// scheduler directly — the worker goroutine calls these without holding
// b.mu, so each acquires its own narrow lock where shared state is read.
// A failure here sets the failed flag and is returned to the scheduler; it
// is not passed to the protocol's error listener.

func (b *Base) ImplConnect() error {
	err := b.transport.ImplConnect()
	b.mu.Lock()
	if err != nil {
		b.failed = true
	} else {
		b.connected = true
		b.failed = false
	}
	b.mu.Unlock()
	return err
}

func (b *Base) ImplWritePacket(cmd queue.Command) error {
	p := cmd.Packet
	p.Lock()
	err := b.transport.ImplWritePacket(p)
	p.Unlock()
	b.mu.Lock()
	b.failed = err != nil
	b.mu.Unlock()
	return err
}

func (b *Base) ImplDisconnect() error {
	err := b.transport.ImplDisconnect()
	b.mu.Lock()
	b.connected = false
	b.mu.Unlock()
	return err
}

func (b *Base) ImplDispatch(cmd queue.Command) error {
	req, ok := cmd.Dispatch.(dispatchRequest)
	if !ok {
		return nil
	}
	return b.transport.ImplDispatch(req.Caption, req.Action, req.State)
}

func (b *Base) Failed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

func (b *Base) AllowReconnect() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reconnectEnabled
}
