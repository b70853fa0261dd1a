// Package session implements the typed logging session (§3 "Session", §4.15)
// that sits between application code and the routing facade.
package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gosmartlog/smartlog/pkg/packet"
)

// Sink is the narrow facade-facing surface a Session needs: where to send
// finished packets, and the two global gates (facade level, facade enabled)
// a session's own filtering is layered on top of (§3 "Session").
type Sink interface {
	Send(p packet.Packet) error
	DefaultLevel() packet.Level
	Enabled() bool
}

// processID is stamped on every packet this process produces. The original
// product derives a per-process hash; no such scheme survived distillation
// (see DESIGN.md), so this implementation uses os.Getpid() directly.
var processID = os.Getpid()

// Session is a named, independently filterable logging handle (§3). A zero
// Session is not usable; construct one through Manager.Add.
type Session struct {
	mu sync.Mutex

	manager *Manager
	sink    Sink

	name   string
	active bool
	level  packet.Level
	color  packet.Color
	stored bool
}

func newSession(manager *Manager, sink Sink, name string) *Session {
	return &Session{
		manager: manager,
		sink:    sink,
		name:    name,
		active:  true,
		level:   packet.LevelDebug,
	}
}

// Name returns the session's current name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Rename changes the session's name and re-registers it under the manager
// (§3: "renaming re-registers in the manager").
func (s *Session) Rename(name string) {
	s.manager.rename(s, name)
}

func (s *Session) setNameLocked(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// SetActive toggles the session's active flag.
func (s *Session) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

// Active reports the session's active flag.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetLevel sets the session's minimum level.
func (s *Session) SetLevel(level packet.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}

// Level returns the session's minimum level.
func (s *Session) Level() packet.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// SetColor sets the session's default background color.
func (s *Session) SetColor(c packet.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = c
}

// shouldEmit implements §3's filter: `active && level >= session.level &&
// level >= facade.level && facade.enabled`.
func (s *Session) shouldEmit(level packet.Level) bool {
	s.mu.Lock()
	active, floor := s.active, s.level
	s.mu.Unlock()
	return active && level >= floor && level >= s.sink.DefaultLevel() && s.sink.Enabled()
}

func (s *Session) send(p packet.Packet) error {
	if !s.shouldEmit(p.Level()) {
		return nil
	}
	return s.sink.Send(p)
}

func nowMicros() int64 { return time.Now().UnixMicro() }

// logEntry builds a LogEntry stamped with this session's identity.
func (s *Session) logEntry(level packet.Level, entryType packet.LogEntryType, title string) *packet.LogEntry {
	s.mu.Lock()
	name, color := s.name, s.color
	s.mu.Unlock()

	e := packet.NewLogEntry(level, entryType, title)
	e.SetLevel(level)
	e.SessionName = name
	e.Color = color
	e.TimestampMicros = nowMicros()
	e.ProcessID = processID
	return e
}

// Message logs title at LevelMessage (§3 subtype family "message").
func (s *Session) Message(title string) error {
	return s.send(s.logEntry(packet.LevelMessage, packet.LogEntryMessage, title))
}

// Messagef is the formatted variant of Message.
func (s *Session) Messagef(format string, args ...any) error {
	return s.Message(fmt.Sprintf(format, args...))
}

// Warning logs title at LevelWarning (§3 subtype family "warning").
func (s *Session) Warning(title string) error {
	return s.send(s.logEntry(packet.LevelWarning, packet.LogEntryWarning, title))
}

// Warningf is the formatted variant of Warning.
func (s *Session) Warningf(format string, args ...any) error {
	return s.Warning(fmt.Sprintf(format, args...))
}

// Error logs title at LevelError (§3 subtype family "error").
func (s *Session) Error(title string) error {
	return s.send(s.logEntry(packet.LevelError, packet.LogEntryError, title))
}

// Errorf is the formatted variant of Error.
func (s *Session) Errorf(format string, args ...any) error {
	return s.Error(fmt.Sprintf(format, args...))
}

// EnterMethod records method entry (§3 subtype family "enter/leave-method").
func (s *Session) EnterMethod(name string) error {
	pf := packet.NewProcessFlow(packet.ProcessFlowEnterMethod, name)
	pf.TimestampMicros = nowMicros()
	pf.ProcessID = processID
	return s.send(pf)
}

// LeaveMethod records method exit.
func (s *Session) LeaveMethod(name string) error {
	pf := packet.NewProcessFlow(packet.ProcessFlowLeaveMethod, name)
	pf.TimestampMicros = nowMicros()
	pf.ProcessID = processID
	return s.send(pf)
}

// TrackMethod calls fn between an EnterMethod/LeaveMethod pair, logging the
// leave even if fn panics.
func (s *Session) TrackMethod(name string, fn func()) {
	_ = s.EnterMethod(name)
	defer func() { _ = s.LeaveMethod(name) }()
	fn()
}

// Watch logs a named variable's current value (§3 subtype family "watch").
func (s *Session) Watch(name, value string, varType packet.WatchType) error {
	w := packet.NewWatch(name, value, varType)
	w.TimestampMicros = nowMicros()
	return s.send(w)
}

// Checkpoint logs a named checkpoint marker (§3 subtype family
// "checkpoint"), modeled as a LogEntry with the checkpoint sub-type.
func (s *Session) Checkpoint(name string) error {
	return s.send(s.logEntry(packet.LevelMessage, packet.LogEntryCheckpoint, name))
}

// ControlCommand sends a control-command packet (§3 subtype family
// "control-command"), always at the reserved control level.
func (s *Session) ControlCommand(cmdType packet.ControlCommandType) error {
	cc := packet.NewControlCommand(cmdType)
	return s.send(cc)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
