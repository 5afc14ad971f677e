package ml

import (
	"errors"
	"fmt"
)

// TrainConfig 训练配置
type TrainConfig struct {
	TestRatio   float64
	Seed        int64
	NEstimators int
	MaxDepth    int
}

// DefaultTrainConfig holds out 20% with seed 42 and grows 100 trees.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		TestRatio:   DefaultTestRatio,
		Seed:        DefaultSeed,
		NEstimators: DefaultEstimators,
	}
}

// TrainResult is the outcome of a training run.
type TrainResult struct {
	Model      *RandomForest
	Evaluation Evaluation
	DataPoints int
	Habitable  int
	TrainSize  int
	TestSize   int
}

// Train splits the dataset, fits a fresh forest on the training part and
// scores it on the held-out part. It never updates an existing model.
func Train(ds *Dataset, config TrainConfig) (*TrainResult, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.New("dataset is empty")
	}

	features, labels := ds.Matrix()
	trainX, trainY, testX, testY := SplitDataset(features, labels, config.TestRatio, config.Seed)
	if len(trainX) == 0 {
		return nil, fmt.Errorf("dataset of %d rows leaves no training rows", ds.Len())
	}

	model, err := TrainForest(ForestConfig{
		NEstimators: config.NEstimators,
		MaxDepth:    config.MaxDepth,
		Seed:        config.Seed,
	}, trainX, trainY)
	if err != nil {
		return nil, err
	}

	evaluation, err := EvaluateModel(model, testX, testY)
	if err != nil {
		return nil, err
	}

	return &TrainResult{
		Model:      model,
		Evaluation: evaluation,
		DataPoints: ds.Len(),
		Habitable:  ds.Habitable(),
		TrainSize:  len(trainX),
		TestSize:   len(testX),
	}, nil
}
