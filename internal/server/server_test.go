package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/registry/pypi"
	"github.com/projlint/projlint/pkg/store"
)

const validManifest = `
[tool.poetry]
name = "demo"
version = "0.1.0"
authors = ["Jane Doe <jane@example.org>"]

[tool.poetry.dependencies]
python = ">=3.8"
numpy = "^1.20"

[build-system]
requires = ["poetry-core>=1.0"]
build-backend = "poetry.core.masonry.api"
`

// newTestServer wires a Server against a fake registry endpoint.
func newTestServer(t *testing.T, registryHandler http.Handler) *Server {
	t.Helper()

	upstream := httptest.NewServer(registryHandler)
	t.Cleanup(upstream.Close)

	client := pypi.NewClientWithBaseURL(cache.NewNullCache(), time.Hour, upstream.URL)
	return New(Options{Registry: client})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestLint(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodPost, "/v1/lint", strings.NewReader(validManifest))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report struct {
		ID     string `json:"id"`
		Issues []struct {
			Severity string `json:"severity"`
		} `json:"issues"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.ID == "" {
		t.Error("report should carry an ID")
	}
	for _, issue := range report.Issues {
		if issue.Severity == "error" {
			t.Errorf("clean manifest produced an error: %+v", issue)
		}
	}
}

func TestLintBadRequests(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"toml syntax error", "[tool.poetry\nname=", http.StatusUnprocessableEntity},
		{"no project tables", "[tool.black]\nline-length = 80\n", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/lint", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLintRecordsHistory(t *testing.T) {
	history, err := store.OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { history.Close() })

	client := pypi.NewClientWithBaseURL(cache.NewNullCache(), time.Hour, "http://127.0.0.1:0")
	s := New(Options{Registry: client, History: history})

	req := httptest.NewRequest(http.MethodPost, "/v1/lint", strings.NewReader(validManifest))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	runs, err := history.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d history entries, want 1", len(runs))
	}
}

func TestPackage(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/numpy/json" {
			w.Write([]byte(`{"info": {"name": "numpy", "version": "1.26.4"}}`))
			return
		}
		http.NotFound(w, r)
	}))

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/packages/numpy", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var info struct {
		Name    string
		Version string
	}
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != "numpy" || info.Version != "1.26.4" {
		t.Errorf("info = %+v", info)
	}
}

func TestPackageNotFound(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/packages/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPackageInvalidName(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/packages/-bad-", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
