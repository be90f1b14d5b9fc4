package cli

import (
	"io"
	"testing"

	"github.com/matzehuels/relboard/pkg/buildinfo"
)

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("root.Use = %q, want %q", root.Use, appName)
	}
	if root.Version != buildinfo.Version {
		t.Errorf("root.Version = %q, want %q", root.Version, buildinfo.Version)
	}

	want := []string{"show", "watch", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing %q subcommand", name)
		}
	}
}

func TestRootCommandConfigFlag(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command should have a persistent --config flag")
	}
}

func TestCacheSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.cacheCommand()

	want := []string{"clear", "path"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("cache command is missing %q subcommand", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)

	c.SetLogLevel(LogDebug)
	if got := c.Logger.GetLevel(); got != LogDebug {
		t.Errorf("logger level = %v, want %v", got, LogDebug)
	}
}
