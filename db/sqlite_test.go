package db

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPredictionsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	for i, label := range []int{0, 1, 1} {
		err := store.SavePrediction(PredictionRecord{
			Radius:         1.0 + float64(i),
			EqTemp:         255,
			Insolation:     1.0,
			StellarTemp:    5780,
			PredictedLabel: label,
			Probability:    0.3 * float64(i+1),
			Source:         "form",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	records, err := store.QueryPredictions(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Radius != 3.0 || records[0].PredictedLabel != 1 || records[0].Source != "form" {
		t.Fatalf("expected newest record first, got %+v", records[0])
	}
	if records[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestTrainingLogRoundTrip(t *testing.T) {
	store := openTestStore(t)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	for _, entry := range []TrainingLog{
		{ModelName: "random_forest", Accuracy: 0.9, TrainedAt: older, DataPoints: 100, Habitable: 7},
		{ModelName: "random_forest", ModelPath: "models/m.json", Accuracy: 0.95, Precision: 0.8, Recall: 0.7, F1: 0.75, TrainedAt: newer, DataPoints: 120, Habitable: 9},
	} {
		if err := store.SaveTrainingLog(entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	logs, err := store.LoadTrainingLog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Accuracy != 0.95 || logs[0].ModelPath != "models/m.json" || logs[0].Habitable != 9 {
		t.Fatalf("expected newest run first, got %+v", logs[0])
	}
	if !logs[0].TrainedAt.Equal(newer) {
		t.Fatalf("unexpected trained_at: %v", logs[0].TrainedAt)
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if err := store.SavePrediction(PredictionRecord{}); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := store.LoadTrainingLog(); err == nil {
		t.Fatal("expected error for nil store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("closing nil store should be a no-op: %v", err)
	}
}
