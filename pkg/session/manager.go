package session

import (
	"strings"
	"sync"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
)

// override holds a session's stored per-name configuration (§3 "Session
// manager": `session.<name>.active|level|color`). Nil fields mean "not
// overridden, use the defaults".
type override struct {
	active *bool
	level  *packet.Level
	color  *packet.Color
}

// Manager maps lower-cased session names to sessions, applies defaults and
// stored overrides on add, and re-registers a session under a new name when
// it is renamed (§3 "Session manager").
type Manager struct {
	mu sync.Mutex

	sink Sink

	sessions  map[string]*Session
	overrides map[string]override

	defaultActive bool
	defaultLevel  packet.Level
	defaultColor  packet.Color
}

// NewManager returns an empty manager that hands new sessions sink as their
// packet destination.
func NewManager(sink Sink) *Manager {
	return &Manager{
		sink:          sink,
		sessions:      make(map[string]*Session),
		overrides:     make(map[string]override),
		defaultActive: true,
		defaultLevel:  packet.LevelDebug,
	}
}

// SetDefaults installs the `sessiondefaults.*` values applied to every
// session on Add before its stored override (if any).
func (m *Manager) SetDefaults(active bool, level packet.Level, color packet.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultActive = active
	m.defaultLevel = level
	m.defaultColor = color
}

// LoadOverrides reads `session.<name>.active|level|color` keys from opts and
// stores them for application on future Add calls (§4.14's loadConfiguration
// delegates here). Every existing session is re-applied immediately: its
// manager defaults are restored, then any stored override for its name.
func (m *Manager) LoadOverrides(opts *options.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range opts.Keys() {
		if !strings.HasPrefix(key, "session.") {
			continue
		}
		rest := strings.TrimPrefix(key, "session.")
		dot := strings.LastIndex(rest, ".")
		if dot < 0 {
			continue
		}
		name, field := rest[:dot], rest[dot+1:]
		ov := m.overrides[name]
		switch field {
		case "active":
			v := opts.Bool(key, true)
			ov.active = &v
		case "level":
			v := opts.Level(key, packet.LevelDebug)
			ov.level = &v
		case "color":
			v := opts.Color(key, packet.Color{})
			ov.color = &v
		default:
			continue
		}
		m.overrides[name] = ov
	}

	for name, s := range m.sessions {
		m.applyLocked(s, name)
	}
}

// Add creates (or returns the existing) session registered under name,
// applying defaults then any stored override for that name.
func (m *Manager) Add(name string) *Session {
	key := normalizeName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s
	}

	s := newSession(m, m.sink, name)
	m.sessions[key] = s
	m.applyLocked(s, key)
	return s
}

// Get looks up a session by name (case-insensitive).
func (m *Manager) Get(name string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[normalizeName(name)]
	return s, ok
}

// Remove unregisters a session by name.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, normalizeName(name))
}

// Names returns every registered session name (unspecified order).
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sessions))
	for _, s := range m.sessions {
		names = append(names, s.Name())
	}
	return names
}

// rename moves s from its current registration key to name's, per §3
// ("on name change, the old key is removed and the new one installed under
// the instance lock").
func (m *Manager) rename(s *Session, name string) {
	newKey := normalizeName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	oldKey := normalizeName(s.Name())
	delete(m.sessions, oldKey)
	s.setNameLocked(name)
	m.sessions[newKey] = s
	m.applyLocked(s, newKey)
}

// applyLocked applies defaults then any stored override for key to s. Must
// be called with m.mu held.
func (m *Manager) applyLocked(s *Session, key string) {
	s.SetActive(m.defaultActive)
	s.SetLevel(m.defaultLevel)
	s.SetColor(m.defaultColor)

	ov, ok := m.overrides[key]
	if !ok {
		return
	}
	if ov.active != nil {
		s.SetActive(*ov.active)
	}
	if ov.level != nil {
		s.SetLevel(*ov.level)
	}
	if ov.color != nil {
		s.SetColor(*ov.color)
	}
}
