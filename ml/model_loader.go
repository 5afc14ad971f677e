package ml

import (
	"fmt"
)

const (
	ModelTypeRandomForest = "random_forest"
	ModelTypeDecisionTree = "decision_tree"
)

// LoadModel loads an artifact of the given type. An empty type means random_forest.
func LoadModel(modelType, path string) (MLModel, error) {
	switch modelType {
	case "", ModelTypeRandomForest:
		forest, err := LoadForest(path)
		if err != nil {
			return nil, err
		}
		return forest, nil
	case ModelTypeDecisionTree:
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}
