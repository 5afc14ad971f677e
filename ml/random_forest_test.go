package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var probePoints = [][]float64{
	{1.0, 255, 1.0, 5780},
	{1.0, 260, 0.7, 5700},
	{11.2, 110, 0.04, 5780},
	{0.92, 251, 0.66, 2566},
	{3.5, 900, 20, 6000},
}

func TestRandomForestSeparatesClasses(t *testing.T) {
	features, labels := syntheticDataset(400, 11).Matrix()
	forest, err := TrainForest(DefaultForestConfig(), features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forest.NumTrees() != DefaultEstimators {
		t.Fatalf("expected %d trees, got %d", DefaultEstimators, forest.NumTrees())
	}

	class, probability, err := forest.Predict([]float64{1.0, 260, 0.7, 5700})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != LabelHabitable || probability <= 0.5 {
		t.Fatalf("expected habitable, got class=%d probability=%v", class, probability)
	}

	class, probability, err = forest.Predict([]float64{11.2, 110, 0.04, 5780})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != LabelUninhabitable || probability >= 0.5 {
		t.Fatalf("expected uninhabitable, got class=%d probability=%v", class, probability)
	}
}

func TestRandomForestDeterministic(t *testing.T) {
	features, labels := syntheticDataset(200, 13).Matrix()
	config := ForestConfig{NEstimators: 25, Seed: 42}

	first, err := TrainForest(config, features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := TrainForest(config, features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, point := range probePoints {
		p1, err := first.PredictProba(point)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p2, _ := second.PredictProba(point)
		if p1 != p2 {
			t.Fatalf("same seed gave different probabilities for %v: %v vs %v", point, p1, p2)
		}
	}
}

func TestRandomForestProbabilityRange(t *testing.T) {
	features, labels := syntheticDataset(120, 17).Matrix()
	forest, err := TrainForest(ForestConfig{NEstimators: 10, Seed: 1}, features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, point := range append(probePoints, features...) {
		class, probability, err := forest.Predict(point)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if probability < 0 || probability > 1 {
			t.Fatalf("probability %v out of range", probability)
		}
		if (class == LabelHabitable) != (probability > 0.5) {
			t.Fatalf("class %d inconsistent with probability %v", class, probability)
		}
	}
}

func TestRandomForestSaveLoadRoundTrip(t *testing.T) {
	features, labels := syntheticDataset(200, 19).Matrix()
	forest, err := TrainForest(ForestConfig{NEstimators: 30, Seed: 42}, features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "models", "habitability_model.json")
	if err := forest.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadForest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.NumTrees() != forest.NumTrees() || loaded.Config() != forest.Config() {
		t.Fatalf("loaded forest metadata differs")
	}

	for _, point := range probePoints {
		wantClass, wantProb, _ := forest.Predict(point)
		for i := 0; i < 2; i++ {
			gotClass, gotProb, err := loaded.Predict(point)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotClass != wantClass || gotProb != wantProb {
				t.Fatalf("round trip changed prediction for %v: %d/%v vs %d/%v", point, wantClass, wantProb, gotClass, gotProb)
			}
		}
	}
}

func TestLoadForestRejectsBadArtifacts(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{"},
		{"wrong format", `{"format":"other","version":1}`},
		{"wrong version", `{"format":"exohab.random_forest","version":9}`},
		{"no trees", `{"format":"exohab.random_forest","version":1,"features":["a","b","c","d"],"trees":[]}`},
		{"bad child index", `{"format":"exohab.random_forest","version":1,"features":["a","b","c","d"],"trees":[[{"feature_idx":0,"left_child":5,"right_child":6}]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.payload), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadForest(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNilForestUnavailable(t *testing.T) {
	var forest *RandomForest
	if _, _, err := forest.Predict(probePoints[0]); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if err := forest.Save(filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Fatal("expected error saving untrained forest")
	}
}

func TestLoadModelByType(t *testing.T) {
	features, labels := syntheticDataset(60, 23).Matrix()
	forest, err := TrainForest(ForestConfig{NEstimators: 5, Seed: 1}, features, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := forest.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadModel("", path); err != nil {
		t.Fatalf("empty type must load a forest: %v", err)
	}
	if _, err := LoadModel("svm", path); err == nil {
		t.Fatal("expected error for unsupported model type")
	}
}
