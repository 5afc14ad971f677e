package ml

import (
	"errors"
	"fmt"
	"os"

	"exohab/catalog"
	"exohab/pipeline"
	"go.uber.org/zap"
)

// ErrDatasetNotFound is returned when the dataset file does not exist.
var ErrDatasetNotFound = errors.New("data file not found")

// Sample is one labeled record.
type Sample struct {
	Name     string   `json:"name"`
	Features Features `json:"features"`
	Label    int      `json:"label"`
}

// Dataset is a labeled snapshot ready for training.
type Dataset struct {
	Samples []Sample
}

// BuildTrainingSet drops rows missing a modeling column and labels the rest.
func BuildTrainingSet(records []catalog.Record) (*Dataset, []pipeline.QualityIssue) {
	cleaned, issues := pipeline.NewFeatureCleaner().Clean(records)

	samples := make([]Sample, 0, len(cleaned))
	for _, record := range cleaned {
		features, ok := FeaturesFromRecord(record)
		if !ok {
			continue
		}
		samples = append(samples, Sample{
			Name:     record.Name,
			Features: features,
			Label:    Label(features),
		})
	}
	return &Dataset{Samples: samples}, issues
}

// LoadDataset reads and labels the dataset file.
func LoadDataset(path string, logger *zap.Logger) (*Dataset, []pipeline.QualityIssue, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, nil, err
	}
	records, err := catalog.LoadFile(path, logger)
	if err != nil {
		return nil, nil, err
	}
	ds, issues := BuildTrainingSet(records)
	return ds, issues, nil
}

// Len 样本数
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Habitable counts positive samples.
func (d *Dataset) Habitable() int {
	count := 0
	for _, s := range d.Samples {
		if s.Label == LabelHabitable {
			count++
		}
	}
	return count
}

// Matrix returns feature vectors and labels in sample order.
func (d *Dataset) Matrix() ([][]float64, []int) {
	features := make([][]float64, len(d.Samples))
	labels := make([]int, len(d.Samples))
	for i, s := range d.Samples {
		features[i] = s.Features.Vector()
		labels[i] = s.Label
	}
	return features, labels
}
