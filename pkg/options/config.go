package options

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ConfigFile is the parsed form of a configuration file (§4.4): a
// case-insensitive key=value map, in file order, with BOM-driven encoding
// detection already applied.
type ConfigFile struct {
	entries map[string]string
	order   []string
}

// LoadConfigFile reads a UTF-8/UTF-16-LE/UTF-16-BE file (auto-detected by
// BOM, defaulting to US-ASCII/UTF-8 when no BOM is present) and parses its
// `key=value` lines (§4.4). Read failures are returned directly — callers
// that need the `io` error kind from §7 wrap this error accordingly; this
// function never panics or silently swallows an unreadable file.
func LoadConfigFile(path string) (*ConfigFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	decoded, err := decodeConfigBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cf := &ConfigFile{entries: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(decoded))
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		idx := strings.IndexByte(trimmed, '=')
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
		value := strings.TrimSpace(trimmed[idx+1:])
		if _, exists := cf.entries[key]; !exists {
			cf.order = append(cf.order, key)
		}
		cf.entries[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan config file: %w", err)
	}

	return cf, nil
}

// decodeConfigBytes auto-detects a UTF-8/UTF-16LE/UTF-16BE BOM and decodes
// accordingly, falling through to the raw bytes (US-ASCII-compatible) when
// no BOM is present.
func decodeConfigBytes(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Get returns the value for key (case-insensitive), or def if absent.
func (c *ConfigFile) Get(key, def string) string {
	if v, ok := c.entries[strings.ToLower(key)]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (c *ConfigFile) Has(key string) bool {
	_, ok := c.entries[strings.ToLower(key)]
	return ok
}

// Keys returns every key found in the file, in file order.
func (c *ConfigFile) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// KeysWithPrefix returns every key with the given lower-cased prefix, used
// to enumerate `session.<name>.*` overrides (§3 Session manager).
func (c *ConfigFile) KeysWithPrefix(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, k := range c.order {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
