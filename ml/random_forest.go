package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultEstimators is the number of trees in the forest.
	DefaultEstimators = 100
	// DefaultSeed fixes the split and the forest for reproducible runs.
	DefaultSeed int64 = 42

	artifactFormat  = "exohab.random_forest"
	artifactVersion = 1
)

// ForestConfig 随机森林参数
type ForestConfig struct {
	NEstimators int   `json:"n_estimators"`
	MaxDepth    int   `json:"max_depth"`
	MaxFeatures int   `json:"max_features"`
	Seed        int64 `json:"seed"`
}

// DefaultForestConfig returns 100 trees, unlimited depth, seed 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NEstimators: DefaultEstimators,
		Seed:        DefaultSeed,
	}
}

// RandomForest is a bagged ensemble of decision trees. A trained forest is
// never modified; share the pointer freely across goroutines.
type RandomForest struct {
	config    ForestConfig
	features  []string
	trees     []*DecisionTree
	trainedAt time.Time
}

// TrainForest fits a new forest. Each tree gets a bootstrap sample and its own
// RNG drawn from the forest seed, so a given seed and dataset always yield the same forest.
func TrainForest(config ForestConfig, features [][]float64, labels []int) (*RandomForest, error) {
	if len(features) == 0 || len(labels) == 0 {
		return nil, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	if config.NEstimators <= 0 {
		config.NEstimators = DefaultEstimators
	}
	width := len(features[0])
	if config.MaxFeatures <= 0 || config.MaxFeatures > width {
		config.MaxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(width)))))
	}

	master := rand.New(rand.NewSource(config.Seed))
	trees := make([]*DecisionTree, 0, config.NEstimators)
	n := len(features)
	for t := 0; t < config.NEstimators; t++ {
		treeRand := rand.New(rand.NewSource(master.Int63()))

		sampleX := make([][]float64, n)
		sampleY := make([]int, n)
		for i := 0; i < n; i++ {
			idx := treeRand.Intn(n)
			sampleX[i] = features[idx]
			sampleY[i] = labels[idx]
		}

		tree := newForestTree(config.MaxDepth, config.MaxFeatures, treeRand)
		if err := tree.Train(sampleX, sampleY); err != nil {
			return nil, fmt.Errorf("train tree %d: %w", t, err)
		}
		// the RNG is only needed while growing
		tree.rnd = nil
		trees = append(trees, tree)
	}

	return &RandomForest{
		config:    config,
		features:  FeatureNames(),
		trees:     trees,
		trainedAt: time.Now().UTC(),
	}, nil
}

// Predict averages the trees' class-1 probabilities. The class is 1 only when
// the average is strictly above one half.
func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	probability, err := rf.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	if probability > 0.5 {
		return LabelHabitable, probability, nil
	}
	return LabelUninhabitable, probability, nil
}

// PredictProba returns the probability of the habitable class.
func (rf *RandomForest) PredictProba(features []float64) (float64, error) {
	if rf == nil || len(rf.trees) == 0 {
		return 0, ErrModelUnavailable
	}
	if len(features) != len(rf.features) {
		return 0, fmt.Errorf("expected %d features, got %d", len(rf.features), len(features))
	}
	sum := 0.0
	for _, tree := range rf.trees {
		leaf, err := tree.leaf(features)
		if err != nil {
			return 0, err
		}
		sum += leaf.Probability
	}
	return sum / float64(len(rf.trees)), nil
}

// Config 训练参数
func (rf *RandomForest) Config() ForestConfig {
	return rf.config
}

// NumTrees 树的数量
func (rf *RandomForest) NumTrees() int {
	return len(rf.trees)
}

// TrainedAt 训练时间
func (rf *RandomForest) TrainedAt() time.Time {
	return rf.trainedAt
}

type forestArtifact struct {
	Format    string       `json:"format"`
	Version   int          `json:"version"`
	Features  []string     `json:"features"`
	Config    ForestConfig `json:"config"`
	TrainedAt time.Time    `json:"trained_at"`
	Trees     [][]TreeNode `json:"trees"`
}

// Save writes the forest to path, replacing any previous artifact atomically.
func (rf *RandomForest) Save(path string) error {
	if rf == nil || len(rf.trees) == 0 {
		return errors.New("model not trained")
	}
	artifact := forestArtifact{
		Format:    artifactFormat,
		Version:   artifactVersion,
		Features:  rf.features,
		Config:    rf.config,
		TrainedAt: rf.trainedAt,
		Trees:     make([][]TreeNode, len(rf.trees)),
	}
	for i, tree := range rf.trees {
		artifact.Trees[i] = tree.nodes
	}
	payload, err := json.Marshal(artifact)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadForest reads an artifact written by Save.
func LoadForest(path string) (*RandomForest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact forestArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if artifact.Format != artifactFormat {
		return nil, fmt.Errorf("unexpected model format %q", artifact.Format)
	}
	if artifact.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported model version %d", artifact.Version)
	}
	if len(artifact.Features) != len(FeatureNames()) {
		return nil, fmt.Errorf("model expects %d features, want %d", len(artifact.Features), len(FeatureNames()))
	}
	if len(artifact.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}

	trees := make([]*DecisionTree, len(artifact.Trees))
	for i, nodes := range artifact.Trees {
		if err := validateNodes(nodes); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = &DecisionTree{nodes: nodes}
	}
	return &RandomForest{
		config:    artifact.Config,
		features:  artifact.Features,
		trees:     trees,
		trainedAt: artifact.TrainedAt,
	}, nil
}
