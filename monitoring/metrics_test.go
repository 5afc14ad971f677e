package monitoring

import (
	"strings"
	"sync"
	"testing"
)

func TestIncrConcurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Incr(PredictionsHabitable)
			}
		}()
	}
	wg.Wait()

	if got := m.Counter(PredictionsHabitable); got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
	if got := m.Snapshot().Counters[PredictionsHabitable]; got != 800 {
		t.Fatalf("snapshot: expected 800, got %d", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Incr(ImagesRendered)
	if m.Counter(ImagesRendered) != 0 {
		t.Fatal("nil metrics must read zero")
	}
}

func TestExportPrometheus(t *testing.T) {
	m := NewMetrics()
	m.Incr(PredictionsRejected)
	m.Incr(PredictionsRejected)

	out := m.ExportPrometheus()
	for _, want := range []string{
		"# TYPE predictions_rejected_total counter",
		"predictions_rejected_total 2\n",
		"images_served_total 0\n",
		"go_goroutines ",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}
}
