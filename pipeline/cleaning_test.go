package pipeline

import (
	"testing"

	"exohab/catalog"
)

func TestFeatureCleaner(t *testing.T) {
	f := catalog.Float
	tests := []struct {
		name   string
		record catalog.Record
		keep   bool
	}{
		{
			name:   "complete record",
			record: catalog.Record{Name: "Earth", Radius: f(1), EqTemp: f(255), Insolation: f(1), StellarTemp: f(5780)},
			keep:   true,
		},
		{
			name:   "missing distance is fine",
			record: catalog.Record{Name: "Far", Radius: f(1), EqTemp: f(255), Insolation: f(1), StellarTemp: f(5780), Distance: nil},
			keep:   true,
		},
		{
			name:   "missing flux",
			record: catalog.Record{Name: "NoFlux", Radius: f(1), EqTemp: f(255), StellarTemp: f(5780)},
			keep:   false,
		},
		{
			name:   "missing stellar temperature",
			record: catalog.Record{Name: "NoStar", Radius: f(1), EqTemp: f(255), Insolation: f(1)},
			keep:   false,
		},
		{
			name:   "missing everything",
			record: catalog.Record{Name: "Empty"},
			keep:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := NewFeatureCleaner()
			cleaned, issues := cleaner.Clean([]catalog.Record{tt.record})
			if tt.keep && (len(cleaned) != 1 || len(issues) != 0) {
				t.Fatalf("expected record to be kept, issues=%+v", issues)
			}
			if !tt.keep && (len(cleaned) != 0 || len(issues) == 0) {
				t.Fatalf("expected record to be dropped")
			}
		})
	}
}

func TestCleanerStats(t *testing.T) {
	records := catalog.MockRecords()
	records[1].Insolation = nil
	records[2].Radius = nil

	cleaner := NewFeatureCleaner()
	cleaned, issues := cleaner.Clean(records)
	if len(cleaned) != 4 {
		t.Fatalf("expected 4 cleaned records, got %d", len(cleaned))
	}
	if len(issues) != 2 || issues[0].Record != "Proxima Centauri b" {
		t.Fatalf("unexpected issues: %+v", issues)
	}

	stats := cleaner.GetStats()
	if stats.TotalProcessed != 6 || stats.Passed != 4 || stats.Rejected != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Issues["require_features"] != 2 {
		t.Fatalf("expected 2 require_features issues, got %d", stats.Issues["require_features"])
	}
}

func TestDisplaySubset(t *testing.T) {
	records := catalog.MockRecords()
	records[0].Distance = nil
	records[1].Name = "  "

	display := DisplaySubset(records, 3)
	if len(display) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(display))
	}
	if display[0].Name != "TRAPPIST-1 e" {
		t.Fatalf("expected first displayable row to be TRAPPIST-1 e, got %s", display[0].Name)
	}

	if got := len(DisplaySubset(records, 0)); got != 4 {
		t.Fatalf("expected 4 displayable rows without limit, got %d", got)
	}
}
