// Package options implements the typed key/value option table (§4.1), the
// connection-string grammar (§4.2), the `$name$` variable expander (§4.3),
// and the configuration-file loader (§4.4).
package options

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosmartlog/smartlog/pkg/packet"
)

// Table is a typed key/value store. Keys are lower-cased on insertion and on
// lookup (§4.1). It is not safe for concurrent use by itself — callers (the
// protocol base, §4.9) hold their own mutex around it, the same way the
// backlog queue is not internally synchronized (§4.7).
type Table struct {
	values map[string]string
	// order preserves insertion order so BuildOptions round-trips
	// deterministically instead of scrambling key order on every call.
	order []string
}

// New returns an empty options table.
func New() *Table {
	return &Table{values: make(map[string]string)}
}

// Set stores value under the lower-cased key.
func (t *Table) Set(key, value string) {
	if key == "" {
		panic("options: Set called with empty key")
	}
	k := strings.ToLower(key)
	if _, exists := t.values[k]; !exists {
		t.order = append(t.order, k)
	}
	t.values[k] = value
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	if key == "" {
		panic("options: Has called with empty key")
	}
	_, ok := t.values[strings.ToLower(key)]
	return ok
}

// Keys returns every key stored in the table, in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// String returns the raw string value of key, or def if absent. The key
// argument being empty is a usage error and panics per §4.1 ("the key
// argument being absent is a usage error and must fail loudly").
func (t *Table) String(key, def string) string {
	if key == "" {
		panic("options: String called with empty key")
	}
	if v, ok := t.values[strings.ToLower(key)]; ok {
		return v
	}
	return def
}

// Bool parses "true"/"false" (case-insensitive); anything else, including an
// absent key, returns def.
func (t *Table) Bool(key string, def bool) bool {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

// Int parses a non-negative integer. Any malformed value, including a
// negative one, returns def — typed readers are total functions that never
// fail loudly on bad *values* (§4.1).
func (t *Table) Int(key string, def int) int {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Size parses a size value with an optional kb|mb|gb suffix (case
// insensitive, default unit KB) and returns the value in bytes (§4.1, §3).
func (t *Table) Size(key string, def int64) int64 {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	n, ok := parseSize(v)
	if !ok {
		return def
	}
	return n
}

// SizeKB is like Size but returns the value in whole kilobytes instead of
// bytes. BuildOptions does not use it: it echoes every key, `backlog.queue`
// and `async.queue` included, as the raw string stored in the table.
func (t *Table) SizeKB(key string, def int64) int64 {
	bytes := t.Size(key, def*1024)
	return bytes / 1024
}

// Timespan parses a duration with an optional s|m|h|d suffix (default
// seconds) and returns it as a time.Duration (§4.1, §3).
func (t *Table) Timespan(key string, def time.Duration) time.Duration {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	d, ok := parseTimespan(v)
	if !ok {
		return def
	}
	return d
}

// Level parses one of the fixed level keywords (§4.1).
func (t *Table) Level(key string, def packet.Level) packet.Level {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	l, ok := packet.ParseLevel(v)
	if !ok {
		return def
	}
	return l
}

// Color parses a hex color with a 0x/&H/$ prefix; 6 hex digits produce RGB,
// 8 produce ARGB, and an odd-length remainder is padded with a trailing '0'
// (§4.1, §3). Any malformed value returns def.
func (t *Table) Color(key string, def packet.Color) packet.Color {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	c, ok := parseColor(v)
	if !ok {
		return def
	}
	return c
}

// Bytes returns the UTF-8 encoding of the string value, padded with zero
// bytes or truncated to exactly length bytes (§4.1, §3).
func (t *Table) Bytes(key string, length int, def []byte) []byte {
	v, ok := t.raw(key)
	if !ok {
		return def
	}
	b := []byte(v)
	if len(b) >= length {
		return b[:length]
	}
	out := make([]byte, length)
	copy(out, b)
	return out
}

func (t *Table) raw(key string) (string, bool) {
	if key == "" {
		panic("options: accessor called with empty key")
	}
	v, ok := t.values[strings.ToLower(key)]
	return v, ok
}

func parseSize(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	unit := int64(1024) // default KB
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "gb"):
		unit = 1024 * 1024 * 1024
		s = strings.TrimSpace(s[:len(s)-2])
	case strings.HasSuffix(lower, "mb"):
		unit = 1024 * 1024
		s = strings.TrimSpace(s[:len(s)-2])
	case strings.HasSuffix(lower, "kb"):
		unit = 1024
		s = strings.TrimSpace(s[:len(s)-2])
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * unit, true
}

func parseTimespan(raw string) (time.Duration, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	unit := time.Second
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "d"):
		unit = 24 * time.Hour
		s = strings.TrimSpace(s[:len(s)-1])
	case strings.HasSuffix(lower, "h"):
		unit = time.Hour
		s = strings.TrimSpace(s[:len(s)-1])
	case strings.HasSuffix(lower, "m"):
		unit = time.Minute
		s = strings.TrimSpace(s[:len(s)-1])
	case strings.HasSuffix(lower, "s"):
		unit = time.Second
		s = strings.TrimSpace(s[:len(s)-1])
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

func parseColor(raw string) (packet.Color, bool) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	case strings.HasPrefix(s, "&H"), strings.HasPrefix(s, "&h"):
		s = s[2:]
	case strings.HasPrefix(s, "$"):
		s = s[1:]
	default:
		return packet.Color{}, false
	}
	if len(s)%2 != 0 {
		s += "0"
	}
	switch len(s) {
	case 6:
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return packet.Color{}, false
		}
		return packet.Color{
			R:   uint8(v >> 16),
			G:   uint8(v >> 8),
			B:   uint8(v),
			A:   0xFF,
			Set: true,
		}, true
	case 8:
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return packet.Color{}, false
		}
		return packet.Color{
			A:   uint8(v >> 24),
			R:   uint8(v >> 16),
			G:   uint8(v >> 8),
			B:   uint8(v),
			Set: true,
		}, true
	default:
		return packet.Color{}, false
	}
}

// BuildOptions re-serializes the given keys (in the order supplied) as a
// connection-string options blob: `key="value", key2="value2"`. This is the
// round-trip counterpart to the connection-string parser (§9, invariant 6) —
// protocols call it with their own recognized-key list so unrecognized keys
// present in the table (rejected earlier at parse time, never reaching here)
// can't leak into the echoed string.
func BuildOptions(t *Table, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := t.raw(k)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, escapeQuotes(v)))
	}
	return strings.Join(parts, ", ")
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// EnsureUTF8 reports whether s is valid UTF-8. No other package in this
// module calls it.
func EnsureUTF8(s string) bool {
	return utf8.ValidString(s)
}
