package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// setCacheEnv points XDG_CACHE_HOME and XDG_CONFIG_HOME into a temp dir
// so cache commands run against a throwaway tree with default config.
func setCacheEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()

	oldCache := os.Getenv("XDG_CACHE_HOME")
	oldConfig := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Cleanup(func() {
		if oldCache != "" {
			os.Setenv("XDG_CACHE_HOME", oldCache)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
		if oldConfig != "" {
			os.Setenv("XDG_CONFIG_HOME", oldConfig)
		} else {
			os.Unsetenv("XDG_CONFIG_HOME")
		}
	})

	return filepath.Join(tmp, "cache", appName)
}

func TestCacheClear(t *testing.T) {
	dir := setCacheEnv(t)

	// Seed entries the way the file backend shards them
	sub := filepath.Join(dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one.json", "two.json"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte(`{}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := New(io.Discard, LogInfo)
	cmd := c.cacheClearCommand()
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries after clear", len(entries))
	}
}

func TestCacheClearEmpty(t *testing.T) {
	setCacheEnv(t)

	c := New(io.Discard, LogInfo)
	cmd := c.cacheClearCommand()
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear on empty cache: %v", err)
	}
}

func TestCachePath(t *testing.T) {
	want := setCacheEnv(t)

	c := New(io.Discard, LogInfo)
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	dir, err := fileCacheDir(cfg)
	if err != nil {
		t.Fatalf("fileCacheDir: %v", err)
	}
	if dir != want {
		t.Errorf("fileCacheDir() = %q, want %q", dir, want)
	}
}
