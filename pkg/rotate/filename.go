package rotate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02-15-04-05"

// FilenameEngine produces and enumerates rotate-stamped file names for a
// base path, per §4.6: `stem-YYYY-MM-DD-HH-mm-ss.ext`.
type FilenameEngine struct {
	dir  string
	stem string
	ext  string
}

// NewFilenameEngine splits path into its directory, stem, and extension.
func NewFilenameEngine(path string) *FilenameEngine {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return &FilenameEngine{dir: dir, stem: stem, ext: ext}
}

// Resolve returns the file path to open. In append mode, the newest
// existing matching file is reused if one exists; otherwise (or when
// appendMode is false) a fresh timestamped name is produced, suffixed with
// repeated 'a' characters until it doesn't collide with an existing file.
func (f *FilenameEngine) Resolve(appendMode bool, now time.Time) (string, error) {
	if appendMode {
		latest, ok, err := f.latest()
		if err != nil {
			return "", err
		}
		if ok {
			return filepath.Join(f.dir, latest), nil
		}
	}
	return f.fresh(now), nil
}

func (f *FilenameEngine) fresh(now time.Time) string {
	ts := now.UTC().Format(timestampLayout)
	suffix := ""
	for {
		name := f.stem + "-" + ts + suffix + f.ext
		full := filepath.Join(f.dir, name)
		if _, err := os.Stat(full); os.IsNotExist(err) {
			return full
		}
		suffix += "a"
	}
}

func (f *FilenameEngine) latest() (string, bool, error) {
	names, err := f.matchingNames()
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}
	return names[len(names)-1], true, nil
}

// matchingNames returns, in lexicographic (= chronological, for this
// format) order, every directory entry whose stem+extension match and whose
// timestamp segment parses.
func (f *FilenameEngine) matchingNames() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list rotate directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := f.parseTimestamp(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// parseTimestamp reports whether name matches this engine's stem/extension
// and, if so, the timestamp it encodes (ignoring any collision suffix).
func (f *FilenameEngine) parseTimestamp(name string) (time.Time, bool) {
	prefix := f.stem + "-"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, f.ext) {
		return time.Time{}, false
	}
	mid := strings.TrimSuffix(strings.TrimPrefix(name, prefix), f.ext)
	if t, err := time.Parse(timestampLayout, mid); err == nil {
		return t.UTC(), true
	}
	// A collision suffix ("a", "aa", ...) trails the timestamp segment.
	trimmed := strings.TrimRight(mid, "a")
	if trimmed == mid {
		return time.Time{}, false
	}
	t, err := time.Parse(timestampLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Prune deletes matching files beyond the maxParts newest. maxParts <= 0
// disables pruning.
func (f *FilenameEngine) Prune(maxParts int) error {
	if maxParts <= 0 {
		return nil
	}
	names, err := f.matchingNames()
	if err != nil {
		return err
	}
	if len(names) <= maxParts {
		return nil
	}
	for _, name := range names[:len(names)-maxParts] {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("prune rotate file %s: %w", name, err)
		}
	}
	return nil
}
