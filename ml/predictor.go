package ml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrModelUnavailable is returned when no model artifact is loaded.
var ErrModelUnavailable = errors.New("model not loaded")

var (
	errMissingField = errors.New("field is required")
	errNotFinite    = errors.New("value is not a finite number")
)

// Category messages shown to users.
const (
	MessageHabitable     = "Potentially Habitable"
	MessageUninhabitable = "Likely Uninhabitable"
)

// ValidationError identifies the input field that could not be parsed.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Prediction 预测结果
type Prediction struct {
	Class       int     `json:"prediction"`
	Probability float64 `json:"probability"`
	Message     string  `json:"message"`
}

// Predictor runs single, synchronous predictions against one loaded model.
type Predictor struct {
	model Classifier
}

// NewPredictor wraps a loaded model. A nil model gives a predictor that
// reports ErrModelUnavailable on every call.
func NewPredictor(model Classifier) *Predictor {
	return &Predictor{model: model}
}

// Available reports whether a model is loaded.
func (p *Predictor) Available() bool {
	return p != nil && p.model != nil
}

// Predict classifies one feature vector.
func (p *Predictor) Predict(f Features) (*Prediction, error) {
	if !p.Available() {
		return nil, ErrModelUnavailable
	}
	class, probability, err := p.model.Predict(f.Vector())
	if err != nil {
		return nil, err
	}
	return &Prediction{
		Class:       class,
		Probability: probability,
		Message:     CategoryMessage(class),
	}, nil
}

// PredictFields parses radius, temp, flux and star_temp from raw strings and
// classifies them. Nothing is computed unless all four parse.
func (p *Predictor) PredictFields(fields map[string]string) (*Prediction, error) {
	if !p.Available() {
		return nil, ErrModelUnavailable
	}
	features, err := ParseFeatures(fields)
	if err != nil {
		return nil, err
	}
	return p.Predict(features)
}

// ParseFeatures converts named string fields into Features.
func ParseFeatures(fields map[string]string) (Features, error) {
	values := make([]float64, 0, len(FieldNames()))
	for _, name := range FieldNames() {
		raw, ok := fields[name]
		if !ok {
			return Features{}, &ValidationError{Field: name, Err: errMissingField}
		}
		v, err := parseFloat(raw)
		if err != nil {
			return Features{}, &ValidationError{Field: name, Value: raw, Err: err}
		}
		values = append(values, v)
	}
	return Features{
		Radius:      values[0],
		EqTemp:      values[1],
		Insolation:  values[2],
		StellarTemp: values[3],
	}, nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// CategoryMessage maps a class to its human-readable category.
func CategoryMessage(class int) string {
	if class == LabelHabitable {
		return MessageHabitable
	}
	return MessageUninhabitable
}
