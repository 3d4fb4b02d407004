package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/registry"
)

func testClient(serverURL string) *Client {
	return NewClientWithBaseURL(cache.NewNullCache(), time.Hour, serverURL)
}

func TestClient_FetchPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flask/json" {
			resp := apiResponse{
				Info: apiInfo{
					Name:           "Flask",
					Version:        "2.0.0",
					Summary:        "A micro web framework",
					License:        "BSD-3-Clause",
					RequiresDist:   []string{"click>=7.0", "werkzeug>=2.0"},
					RequiresPython: ">=3.8",
					Author:         "Armin Ronacher",
				},
			}
			json.NewEncoder(w).Encode(resp)
		} else {
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)

	info, err := c.FetchPackage(context.Background(), "Flask", true)
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}

	if info.Name != "Flask" {
		t.Errorf("expected name Flask, got %s", info.Name)
	}
	if info.Version != "2.0.0" {
		t.Errorf("expected version 2.0.0, got %s", info.Version)
	}
	if info.RequiresPython != ">=3.8" {
		t.Errorf("expected requires_python >=3.8, got %s", info.RequiresPython)
	}
	if want := []string{"click", "werkzeug"}; !reflect.DeepEqual(info.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", info.Dependencies, want)
	}
}

func TestClient_FetchPackage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.FetchPackage(context.Background(), "does-not-exist", true)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchPackage_CacheHit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(apiResponse{
			Info: apiInfo{Name: "requests", Version: "2.31.0"},
		})
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClientWithBaseURL(backend, time.Hour, server.URL)

	if _, err := c.FetchPackage(context.Background(), "requests", false); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := c.FetchPackage(context.Background(), "requests", false); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 API call with warm cache, got %d", calls)
	}

	// refresh=true bypasses the cache
	if _, err := c.FetchPackage(context.Background(), "requests", true); err != nil {
		t.Fatalf("refresh fetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 API calls after refresh, got %d", calls)
	}
}

func TestExtractDeps(t *testing.T) {
	tests := []struct {
		name     string
		requires []string
		want     []string
	}{
		{
			name:     "plain requirements",
			requires: []string{"numpy>=1.20", "pandas (>=1.3)"},
			want:     []string{"numpy", "pandas"},
		},
		{
			name:     "skips extras markers",
			requires: []string{"sphinx; extra == 'docs'", "pyyaml>=5.0"},
			want:     []string{"pyyaml"},
		},
		{
			name:     "normalizes and deduplicates",
			requires: []string{"Ruamel.YAML>=0.17", "ruamel_yaml"},
			want:     []string{"ruamel-yaml"},
		},
		{
			name:     "keeps environment markers that are not extras",
			requires: []string{`colorama; sys_platform == "win32"`},
			want:     []string{"colorama"},
		},
		{
			name:     "empty",
			requires: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDeps(tt.requires)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractDeps(%v) = %v, want %v", tt.requires, got, tt.want)
			}
		})
	}
}

func TestExtractLicenseType(t *testing.T) {
	tests := []struct {
		name        string
		license     string
		classifiers []string
		want        string
	}{
		{
			name:        "from classifier",
			license:     "long license text...",
			classifiers: []string{"License :: OSI Approved :: MIT License"},
			want:        "MIT License",
		},
		{
			name:    "short license field",
			license: "Apache-2.0",
			want:    "Apache-2.0",
		},
		{
			name:    "first line of long text",
			license: "BSD 3-Clause License\nRedistribution and use in source...",
			want:    "BSD 3-Clause License",
		},
		{
			name: "nothing available",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractLicenseType(tt.license, tt.classifiers)
			if got != tt.want {
				t.Errorf("extractLicenseType() = %q, want %q", got, tt.want)
			}
		})
	}
}
