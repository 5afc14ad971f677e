package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"go.uber.org/zap"

	"exohab/config"
	"exohab/db"
	"exohab/logging"
	"exohab/ml"
)

func main() {
	configName := flag.String("config", "config.yaml", "config file")
	dataPath := flag.String("data", "", "dataset CSV path")
	modelPath := flag.String("model_path", "", "model output path")
	seed := flag.Int64("seed", 0, "random seed")
	nEstimators := flag.Int("n_estimators", 0, "number of trees")
	maxDepth := flag.Int("max_depth", 0, "max tree depth, 0 for unlimited")
	testRatio := flag.Float64("test_ratio", 0, "held-out fraction")
	dbPath := flag.String("db", "", "sqlite path for the training log")
	flag.Parse()

	cfg, configPath, err := config.LoadOrDefault(*configName)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if configPath != "" {
		cfg.ResolvePaths(filepath.Dir(configPath))
	}

	// flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Path = *dataPath
		case "model_path":
			cfg.Model.Path = *modelPath
		case "seed":
			cfg.Model.Seed = *seed
		case "n_estimators":
			cfg.Model.NEstimators = *nEstimators
		case "max_depth":
			cfg.Model.MaxDepth = *maxDepth
		case "test_ratio":
			cfg.Model.TestRatio = *testRatio
		case "db":
			cfg.Database.Path = *dbPath
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ds, issues, err := ml.LoadDataset(cfg.Data.Path, logger)
	if errors.Is(err, ml.ErrDatasetNotFound) {
		fmt.Printf("data file not found: %s (run cmd/fetch_data first)\n", cfg.Data.Path)
		return
	}
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	if len(issues) > 0 {
		logger.Info("rows dropped for missing features", zap.Int("dropped", len(issues)))
	}

	result, err := ml.Train(ds, ml.TrainConfig{
		TestRatio:   cfg.Model.TestRatio,
		Seed:        cfg.Model.Seed,
		NEstimators: cfg.Model.NEstimators,
		MaxDepth:    cfg.Model.MaxDepth,
	})
	if err != nil {
		logger.Fatal("failed to train model", zap.Error(err))
	}

	fmt.Printf("data points: %d, potentially habitable: %d\n", result.DataPoints, result.Habitable)
	fmt.Printf("train: %d, test: %d\n", result.TrainSize, result.TestSize)
	fmt.Printf("accuracy: %.4f\n", result.Evaluation.Accuracy)
	fmt.Print(result.Evaluation.Report())

	if err := result.Model.Save(cfg.Model.Path); err != nil {
		logger.Fatal("failed to save model", zap.Error(err))
	}
	fmt.Printf("model saved to %s\n", cfg.Model.Path)

	if cfg.Database.Path == "" {
		return
	}
	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Warn("training log not recorded", zap.Error(err))
		return
	}
	defer store.Close()

	eval := result.Evaluation
	if err := store.SaveTrainingLog(db.TrainingLog{
		ModelName:  ml.ModelTypeRandomForest,
		ModelPath:  cfg.Model.Path,
		Accuracy:   eval.Accuracy,
		Precision:  eval.WeightedAvg.Precision,
		Recall:     eval.WeightedAvg.Recall,
		F1:         eval.WeightedAvg.F1,
		TrainedAt:  result.Model.TrainedAt(),
		DataPoints: result.DataPoints,
		Habitable:  result.Habitable,
	}); err != nil {
		logger.Warn("training log not recorded", zap.Error(err))
	}
}
