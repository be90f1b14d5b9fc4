package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/relboard/pkg/registry"
)

func TestFetchLatest(t *testing.T) {
	var gotPath, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name":"v2.43.0","name":"cli 2.43.0","assets":[{"name":"dist.zip","browser_download_url":"https://example.com/dist.zip","size":1024}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)

	rel, raw, err := c.FetchLatest(context.Background(), "cli", "cli")
	if err != nil {
		t.Fatalf("FetchLatest() error: %v", err)
	}

	if gotPath != "/repos/cli/cli/releases/latest" {
		t.Errorf("request path = %q, want /repos/cli/cli/releases/latest", gotPath)
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept header = %q", gotAccept)
	}
	if rel.TagName != "v2.43.0" {
		t.Errorf("TagName = %q, want v2.43.0", rel.TagName)
	}
	if len(rel.Assets) != 1 || rel.Assets[0].BrowserDownloadURL != "https://example.com/dist.zip" {
		t.Errorf("Assets = %+v", rel.Assets)
	}
	if len(raw) == 0 {
		t.Error("raw body should be returned alongside the decoded release")
	}
}

func TestFetchLatestNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)

	_, _, err := c.FetchLatest(context.Background(), "nobody", "nothing")
	var se *registry.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("FetchLatest() error = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
	if se.RateLimited() {
		t.Error("404 should not report as rate limited")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if c.Timeout() != registry.DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", c.Timeout(), registry.DefaultTimeout)
	}

	// Trailing slashes are normalized so URL joins stay clean
	c = NewClient("https://ghe.example.com/api/v3/", time.Second)
	if c.baseURL != "https://ghe.example.com/api/v3" {
		t.Errorf("baseURL = %q, trailing slash should be trimmed", c.baseURL)
	}
}

func TestKey(t *testing.T) {
	if got := Key("cli", "cli"); got != "github:cli/cli" {
		t.Errorf("Key() = %q, want github:cli/cli", got)
	}
	if got := Key("BurntSushi", "toml"); got != "github:BurntSushi/toml" {
		t.Errorf("Key() = %q, want github:BurntSushi/toml", got)
	}
}
