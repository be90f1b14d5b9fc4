package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/relboard/pkg/registry"
	"github.com/matzehuels/relboard/pkg/release"
	"github.com/matzehuels/relboard/pkg/sink"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relboard.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
api_base = "https://ghe.example.com/api/v3"
ttl = "12h"
timeout = "3s"
max_retries = 4
backoff_base = "100ms"
backoff_step = "200ms"

[cache]
backend = "memory"
prefix = "test"

[[resource]]
owner = "cli"
repo = "cli"
prefer = "name"
strip_v = true

[[resource]]
owner = "golang"
repo = "go"

  [[resource.bindings]]
  kind = "asset-url"
  target = "dl"
  attr = "download"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.APIBase != "https://ghe.example.com/api/v3" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.TTL.Std() != 12*time.Hour || cfg.Timeout.Std() != 3*time.Second {
		t.Errorf("durations = %v, %v", cfg.TTL.Std(), cfg.Timeout.Std())
	}

	policy := cfg.Policy()
	if policy.MaxRetries != 4 || policy.BackoffBase != 100*time.Millisecond || policy.BackoffStep != 200*time.Millisecond {
		t.Errorf("policy = %+v", policy)
	}

	if cfg.Cache.Backend != "memory" || cfg.Cache.Prefix != "test" {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	if len(cfg.Resources) != 2 {
		t.Fatalf("resources = %d, want 2", len(cfg.Resources))
	}

	first := cfg.Resources[0]
	if first.Prefer != release.FieldName || !first.StripV {
		t.Errorf("first rule = %+v", first.Rule)
	}
	if first.Key != "github:cli/cli" {
		t.Errorf("first key = %q, want derived default", first.Key)
	}
	if len(first.Bindings) != 2 {
		t.Errorf("first bindings = %+v, want the two defaults", first.Bindings)
	}

	second := cfg.Resources[1]
	if len(second.Bindings) != 1 {
		t.Fatalf("second bindings = %+v", second.Bindings)
	}
	b := second.Bindings[0]
	if b.Kind != BindAssetURL || b.Target != "dl" || b.Attr != "download" {
		t.Errorf("custom binding = %+v", b)
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("LoadConfig() should fail for a missing explicit path")
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.APIBase == "" || cfg.TTL.Std() != registry.DefaultTTL {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Cache.Prefix != "relboard" {
		t.Errorf("prefix = %q", cfg.Cache.Prefix)
	}
	if len(cfg.Resources) == 0 {
		t.Fatal("default resource set should not be empty")
	}
	for _, r := range cfg.Resources {
		if r.Key == "" || len(r.Bindings) == 0 {
			t.Errorf("resource %s not defaulted: %+v", r.Label(), r)
		}
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, `ttl = not quoted`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should fail on invalid TOML")
	}
}

func TestValidateAndSetDefaultsRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "bad backend",
			cfg:  Config{Cache: CacheConfig{Backend: "sqlite"}},
			want: "cache backend",
		},
		{
			name: "resource missing repo",
			cfg:  Config{Resources: []Resource{{Owner: "cli"}}},
			want: "owner and repo",
		},
		{
			name: "bad prefer",
			cfg:  Config{Resources: []Resource{{Owner: "a", Repo: "b", Rule: release.Rule{Prefer: "version"}}}},
			want: "prefer",
		},
		{
			name: "bad binding kind",
			cfg: Config{Resources: []Resource{{
				Owner: "a", Repo: "b",
				Bindings: []Binding{{Kind: "attr"}},
			}}},
			want: "binding kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("ValidateAndSetDefaults() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	cfg := Config{Resources: []Resource{{Owner: "cli", Repo: "cli"}}}

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	bindings := len(cfg.Resources[0].Bindings)

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Resources[0].Bindings) != bindings {
		t.Error("second validation changed the config")
	}
}

func TestResourceDefaultBindings(t *testing.T) {
	r := Resource{Owner: "cli", Repo: "cli"}
	if err := r.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	if r.Key != "github:cli/cli" {
		t.Errorf("Key = %q", r.Key)
	}
	if len(r.Bindings) != 2 {
		t.Fatalf("Bindings = %+v", r.Bindings)
	}
	if r.Bindings[0].Kind != BindText || r.Bindings[0].Target != r.Key {
		t.Errorf("text binding = %+v", r.Bindings[0])
	}
	if r.Bindings[1].Kind != BindAssetURL || r.Bindings[1].Attr != sink.AttrHref {
		t.Errorf("asset binding = %+v", r.Bindings[1])
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90m")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if d.Std() != 90*time.Minute {
		t.Errorf("d = %v", d.Std())
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText(soon) should fail")
	}
}

func TestConfigPolicyDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.Policy(), registry.DefaultPolicy(); got != want {
		t.Errorf("Policy() = %+v, want %+v", got, want)
	}
}
