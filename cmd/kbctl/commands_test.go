package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, serverURL string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--server", serverURL}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":"ok","timestamp":"2026-10-16T10:00:00Z"}`)
	}))
	defer srv.Close()

	out, _, err := runCLI(t, srv.URL, "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "Server Status: ok") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUploadCommandSendsDocumentField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Microservices Guide.md")
	if err := os.WriteFile(path, []byte("microservice scalability"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "Microservices Guide.md" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "text/markdown" {
			t.Errorf("unexpected part content type %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1,"title":"Microservices Guide","category":"Architecture","tags":["microservices"]}`)
	}))
	defer srv.Close()

	out, _, err := runCLI(t, srv.URL, "upload", path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, `#1 "Microservices Guide" [Architecture] tags=microservices`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUploadCommandReportsServerError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, []byte("png"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unsupported file type: invalid input"}`)
	}))
	defer srv.Close()

	_, stderr, err := runCLI(t, srv.URL, "upload", path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(stderr, "unsupported file type") {
		t.Fatalf("expected server error on stderr, got %q", stderr)
	}
}

func TestAskCommandCreatesSessionFirst(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/chat/session":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"sessionId":"s-1","createdAt":"2026-10-16T10:00:00Z"}`)
		case "/api/chat/message":
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body["sessionId"] != "s-1" || body["message"] != "how to scale teams" {
				t.Errorf("unexpected body %v", body)
			}
			_, _ = io.WriteString(w, `{"response":"Grow leads first.","sources":[{"id":2,"title":"Team Scaling","relevanceScore":18}],"sessionId":"s-1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out, _, err := runCLI(t, srv.URL, "ask", "how", "to", "scale", "teams")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(calls) != 2 || calls[0] != "POST /api/chat/session" || calls[1] != "POST /api/chat/message" {
		t.Fatalf("unexpected calls %v", calls)
	}
	for _, want := range []string{"Grow leads first.", "#2 Team Scaling (18.0)", "session: s-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestSearchCommandBuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "cloud costs" || q.Get("limit") != "3" || q.Get("tags") != "cloud,api" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = io.WriteString(w, `{"query":"cloud costs","results":[{"id":4,"title":"Cloud Costs","category":"Architecture","relevanceScore":21}],"totalCount":1}`)
	}))
	defer srv.Close()

	out, _, err := runCLI(t, srv.URL, "search", "--limit", "3", "--tags", "cloud,api", "cloud", "costs")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "#4 Cloud Costs [Architecture]") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHistoryCommandReportsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"chat session not found"}`)
	}))
	defer srv.Close()

	_, _, err := runCLI(t, srv.URL, "history", "missing")
	if err == nil || !strings.Contains(err.Error(), "status 404: chat session not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.md":       "text/markdown",
		"b.MARKDOWN": "text/markdown",
		"c.txt":      "text/plain",
		"d.pdf":      "application/pdf",
		"e.unknown":  "application/octet-stream",
	}
	for path, want := range tests {
		if got := contentTypeFor(path); got != want {
			t.Fatalf("contentTypeFor(%q) = %q, want %q", path, got, want)
		}
	}
}
