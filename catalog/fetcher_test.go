package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestFetcherArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pl_name,pl_rade,pl_eqt,pl_insol,st_teff,st_rad,sy_dist\nKepler-22 b,2.1,262,1.1,5518,0.98,195\n"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "data", "exoplanets.csv")
	fetcher := NewFetcher(server.URL, cachePath, zap.NewNop())

	records, source, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != SourceArchive {
		t.Fatalf("expected archive source, got %s", source)
	}
	if len(records) != 1 || records[0].Name != "Kepler-22 b" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}

	// second fetch must come from the cache even if the archive is gone
	server.Close()
	records, source, err = fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != SourceCache || len(records) != 1 {
		t.Fatalf("expected cached record, got source=%s records=%d", source, len(records))
	}
}

func TestFetcherFallsBackToMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "exoplanets.csv")
	fetcher := NewFetcher(server.URL, cachePath, zap.NewNop())

	records, source, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != SourceMock {
		t.Fatalf("expected mock source, got %s", source)
	}
	if len(records) != len(MockRecords()) {
		t.Fatalf("expected %d mock records, got %d", len(MockRecords()), len(records))
	}

	cached, err := LoadFile(cachePath, nil)
	if err != nil {
		t.Fatalf("expected mock rows to be cached: %v", err)
	}
	if len(cached) != len(records) {
		t.Fatalf("expected %d cached rows, got %d", len(records), len(cached))
	}
}
