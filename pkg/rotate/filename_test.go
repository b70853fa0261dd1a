package rotate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilenameEngineFreshWhenAppendAndNoneExist(t *testing.T) {
	dir := t.TempDir()
	fe := NewFilenameEngine(filepath.Join(dir, "app.log"))
	now := mustParse(t, "2025-03-04T05:06:07Z")

	got, err := fe.Resolve(true, now)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := filepath.Join(dir, "app-2025-03-04-05-06-07.log")
	if got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestFilenameEngineAppendReusesLatest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"app-2025-03-01-00-00-00.log",
		"app-2025-03-04-05-06-07.log",
		"app-2025-03-02-00-00-00.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	fe := NewFilenameEngine(filepath.Join(dir, "app.log"))
	got, err := fe.Resolve(true, mustParse(t, "2025-03-05T00:00:00Z"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := filepath.Join(dir, "app-2025-03-04-05-06-07.log")
	if got != want {
		t.Fatalf("Resolve() = %q, want latest %q", got, want)
	}
}

func TestFilenameEngineNonAppendAlwaysFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app-2025-03-04-05-06-07.log"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	fe := NewFilenameEngine(filepath.Join(dir, "app.log"))
	got, err := fe.Resolve(false, mustParse(t, "2025-03-04T05:06:07Z"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := filepath.Join(dir, "app-2025-03-04-05-06-07a.log")
	if got != want {
		t.Fatalf("Resolve() = %q, want collision-suffixed %q", got, want)
	}
}

func TestFilenameEngineCollisionSuffixRepeats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"app-2025-03-04-05-06-07.log",
		"app-2025-03-04-05-06-07a.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	fe := NewFilenameEngine(filepath.Join(dir, "app.log"))
	got, err := fe.Resolve(false, mustParse(t, "2025-03-04T05:06:07Z"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := filepath.Join(dir, "app-2025-03-04-05-06-07aa.log")
	if got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestFilenameEnginePrune(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"app-2025-03-01-00-00-00.log",
		"app-2025-03-02-00-00-00.log",
		"app-2025-03-03-00-00-00.log",
		"app-2025-03-04-00-00-00.log",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	fe := NewFilenameEngine(filepath.Join(dir, "app.log"))
	if err := fe.Prune(2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	remaining, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("got %d files after Prune, want 2", len(remaining))
	}
	for _, e := range remaining {
		if e.Name() != "app-2025-03-03-00-00-00.log" && e.Name() != "app-2025-03-04-00-00-00.log" {
			t.Fatalf("unexpected surviving file %q", e.Name())
		}
	}
}

func TestFilenameEnginePruneDisabledWhenMaxPartsZero(t *testing.T) {
	dir := t.TempDir()
	name := "app-2025-03-01-00-00-00.log"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	fe := NewFilenameEngine(filepath.Join(dir, "app.log"))
	if err := fe.Prune(0); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatalf("file should survive Prune(0): %v", err)
	}
}
