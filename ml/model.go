package ml

// Classifier is a fitted binary model: class and probability of class 1.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
}

// MLModel is a classifier that can be persisted on its own.
type MLModel interface {
	Classifier
	Save(path string) error
}
