package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientFetch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "application/vnd.github+json" {
			t.Errorf("Accept header = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer server.Close()

	client := NewClient(map[string]string{"Accept": "application/vnd.github+json"}, time.Second)
	client.http = server.Client()

	var payload struct {
		TagName string `json:"tag_name"`
	}
	raw, err := client.Fetch(context.Background(), server.URL, &payload)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if payload.TagName != "v1.0.0" {
		t.Errorf("decoded tag = %q, want %q", payload.TagName, "v1.0.0")
	}
	if string(raw) != `{"tag_name":"v1.0.0"}` {
		t.Errorf("raw payload = %q", raw)
	}
	if requests != 1 {
		t.Errorf("Fetch() made %d requests, want exactly 1", requests)
	}
}

func TestClientFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	client := NewClient(nil, time.Second)
	client.http = server.Client()

	var v any
	_, err := client.Fetch(context.Background(), server.URL, &v)
	if err == nil {
		t.Fatal("Fetch() should return error for 404")
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Fetch() error should be StatusError, got %T", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
	if se.Body != `{"message":"Not Found"}` {
		t.Errorf("Body = %q", se.Body)
	}
	if se.RateLimited() {
		t.Error("404 should not be rate limited")
	}
}

func TestClientFetchRateLimitStatuses(t *testing.T) {
	for _, code := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := NewClient(nil, time.Second)
		client.http = server.Client()

		var v any
		_, err := client.Fetch(context.Background(), server.URL, &v)
		server.Close()

		if !IsRateLimit(err) {
			t.Errorf("status %d should classify as rate limited, got %v", code, err)
		}
	}
}

func TestClientFetchStatusBodyBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	client := NewClient(nil, time.Second)
	client.http = server.Client()

	var v any
	_, err := client.Fetch(context.Background(), server.URL, &v)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error should be StatusError, got %T", err)
	}
	if len(se.Body) > maxErrorBody {
		t.Errorf("Body length = %d, want at most %d", len(se.Body), maxErrorBody)
	}
}

func TestClientFetchDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(nil, time.Second)
	client.http = server.Client()

	var v map[string]any
	_, err := client.Fetch(context.Background(), server.URL, &v)
	if err == nil {
		t.Fatal("Fetch() should return error for invalid JSON")
	}

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Fetch() error should be DecodeError, got %T", err)
	}
	if de.Unwrap() == nil {
		t.Error("DecodeError should wrap the underlying decode failure")
	}
}

func TestClientFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(nil, 50*time.Millisecond)
	client.http = server.Client()

	var v any
	start := time.Now()
	_, err := client.Fetch(context.Background(), server.URL, &v)
	elapsed := time.Since(start)

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch() error should be TimeoutError, got %v", err)
	}
	if te.Timeout != 50*time.Millisecond {
		t.Errorf("TimeoutError.Timeout = %v", te.Timeout)
	}
	// The in-flight request must be cancelled at the deadline, not run on
	if elapsed > 2*time.Second {
		t.Errorf("Fetch() took %v, deadline was not enforced", elapsed)
	}
}

func TestClientFetchCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(nil, time.Second)
	client.http = server.Client()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	var v any
	_, err := client.Fetch(ctx, server.URL, &v)
	if !IsTimeout(err) {
		t.Errorf("cancelled context should classify as TimeoutError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
}

func TestNewClientDefaultTimeout(t *testing.T) {
	client := NewClient(nil, 0)
	if client.Timeout() != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout(), DefaultTimeout)
	}
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"403", &StatusError{StatusCode: 403}, true},
		{"429", &StatusError{StatusCode: 429}, true},
		{"404", &StatusError{StatusCode: 404}, false},
		{"500", &StatusError{StatusCode: 500}, false},
		{"wrapped 429", &DecodeError{Err: &StatusError{StatusCode: 429}}, true},
		{"timeout", &TimeoutError{Timeout: time.Second, Err: context.DeadlineExceeded}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimit(tt.err); got != tt.want {
				t.Errorf("IsRateLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}
