package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hyperengineering/facet/internal/api"
	"github.com/hyperengineering/facet/internal/store"
)

// testServer wraps a real SQLite-backed server instance for end-to-end tests.
type testServer struct {
	*httptest.Server
	store store.Store
}

// startServer boots a server with a fresh on-disk database and no assistant.
func startServer(t *testing.T) *testServer {
	return startAuthedServer(t, "")
}

// startAuthedServer is startServer with bearer auth enabled when apiKey is
// non-empty.
func startAuthedServer(t *testing.T, apiKey string) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "facet.db")
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := api.NewHandler(db, nil, apiKey, "e2e")
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, store: db}
}

// do issues a JSON request against the server and decodes the response body.
// Pass nil body for body-less requests and nil out to discard the response.
func (s *testServer) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read response: %v", err)
		}
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, string(raw), err)
		}
	}
	return resp.StatusCode
}

// mustStatus fails the test unless the request returns the expected status.
func (s *testServer) mustStatus(t *testing.T, method, path string, body, out any, want int) {
	t.Helper()
	if got := s.do(t, method, path, body, out); got != want {
		t.Fatalf("%s %s = %d, want %d", method, path, got, want)
	}
}
