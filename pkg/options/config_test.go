package options

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFilePlainASCII(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartlog.conf")
	content := "; comment line\n\nconnections=file(filename=\"app.log\")\nenabled=true\n  level = warning  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if got := cf.Get("enabled", ""); got != "true" {
		t.Fatalf("enabled = %q, want true", got)
	}
	if got := cf.Get("level", ""); got != "warning" {
		t.Fatalf("level = %q, want warning", got)
	}
	if !cf.Has("connections") {
		t.Fatalf("expected connections key")
	}
}

func TestLoadConfigFileUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartlog_bom.conf")
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := append(bom, []byte("appname=myapp\n")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if got := cf.Get("appname", ""); got != "myapp" {
		t.Fatalf("appname = %q, want myapp", got)
	}
}

func TestLoadConfigFileUTF16LE(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartlog_utf16le.conf")

	text := "appname=myapp\n"
	buf := []byte{0xFF, 0xFE} // UTF-16LE BOM
	for _, r := range text {
		buf = append(buf, byte(r), 0x00)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if got := cf.Get("appname", ""); got != "myapp" {
		t.Fatalf("appname = %q, want myapp", got)
	}
}

func TestLoadConfigFileDuplicateKeyOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartlog_dup.conf")
	content := "level=debug\nlevel=error\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if got := cf.Get("level", ""); got != "error" {
		t.Fatalf("level = %q, want error (last write wins)", got)
	}
	if len(cf.Keys()) != 1 {
		t.Fatalf("Keys() = %v, want single deduplicated key", cf.Keys())
	}
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestConfigFileKeysWithPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartlog_sessions.conf")
	content := "session.main.level=debug\nsession.main.color=0xFF0000\nappname=x\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	keys := cf.KeysWithPrefix("session.main.")
	if len(keys) != 2 {
		t.Fatalf("KeysWithPrefix() = %v, want 2 keys", keys)
	}
}
