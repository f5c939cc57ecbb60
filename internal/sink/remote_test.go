package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRemoteRecordSuccess(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, 5*time.Second)
	if err := r.Record(context.Background(), sampleEvent(true)); err != nil {
		t.Fatal(err)
	}
	if got["tool_name"] != "Bash" {
		t.Errorf("submitted tool_name = %v", got["tool_name"])
	}
}

func TestRemoteRecordServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, 5*time.Second)
	if err := r.Record(context.Background(), sampleEvent(true)); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestRemoteRecordNoEndpoint(t *testing.T) {
	r := NewRemote("", 5*time.Second)
	if err := r.Record(context.Background(), sampleEvent(true)); err == nil {
		t.Fatal("expected error with no endpoint configured")
	}
}

func TestRemoteRecordConnectionRefused(t *testing.T) {
	// reserved port with nothing listening
	r := NewRemote("http://127.0.0.1:1/v1/events", time.Second)
	if err := r.Record(context.Background(), sampleEvent(true)); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestRemoteRecordTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	r := NewRemote(srv.URL, 50*time.Millisecond)
	start := time.Now()
	err := r.Record(context.Background(), sampleEvent(true))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not bounded: took %v", elapsed)
	}
}
