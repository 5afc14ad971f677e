package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func writeDataset(t *testing.T, path string, records []Record) {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func allRecords(records []Record) *Catalog {
	return New(records, records)
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exoplanets.csv")
	writeDataset(t, path, MockRecords()[:2])

	store := NewStore(nil)
	w := NewWatcher(path, store, allRecords, zap.NewNop())
	w.Reload()
	if store.Current().Len() != 2 {
		t.Fatalf("expected 2 records, got %d", store.Current().Len())
	}

	// a broken file keeps the previous snapshot
	if err := os.WriteFile(path, []byte("pl_rade\n1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.Reload()
	if store.Current().Len() != 2 {
		t.Fatalf("expected previous snapshot to be kept, got %d records", store.Current().Len())
	}
}

func TestWatcherRunPicksUpChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "exoplanets.csv")
	writeDataset(t, path, MockRecords()[:1])

	store := NewStore(allRecords(MockRecords()[:1]))
	w := NewWatcher(path, store, allRecords, zap.NewNop())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for store.Current().Len() != len(MockRecords()) {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("snapshot not reloaded, have %d records", store.Current().Len())
		}
		// rewrite until the watcher is registered and sees an event
		writeDataset(t, path, MockRecords())
		time.Sleep(50 * time.Millisecond)
	}

	if _, ok := store.Current().Lookup("jupiter (mock)"); !ok {
		t.Fatal("expected reloaded record to be indexed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
