package ml

import (
	"fmt"
	"strings"
)

// ClassMetrics per-class precision/recall/F1
type ClassMetrics struct {
	Label     int     `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation is the held-out diagnostic for a training run.
type Evaluation struct {
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Support     int            `json:"support"`
}

// Evaluate scores predictions against the true labels of both classes.
func Evaluate(truth, predicted []int) Evaluation {
	n := len(truth)
	if len(predicted) < n {
		n = len(predicted)
	}
	eval := Evaluation{Support: n}
	if n == 0 {
		return eval
	}

	correct := 0
	for i := 0; i < n; i++ {
		if truth[i] == predicted[i] {
			correct++
		}
	}
	eval.Accuracy = float64(correct) / float64(n)

	for _, label := range []int{LabelUninhabitable, LabelHabitable} {
		var tp, fp, fn int
		for i := 0; i < n; i++ {
			switch {
			case predicted[i] == label && truth[i] == label:
				tp++
			case predicted[i] == label:
				fp++
			case truth[i] == label:
				fn++
			}
		}
		m := ClassMetrics{Label: label, Support: tp + fn}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		eval.Classes = append(eval.Classes, m)
	}

	eval.MacroAvg.Label = -1
	eval.WeightedAvg.Label = -1
	for _, m := range eval.Classes {
		k := float64(len(eval.Classes))
		eval.MacroAvg.Precision += m.Precision / k
		eval.MacroAvg.Recall += m.Recall / k
		eval.MacroAvg.F1 += m.F1 / k

		w := float64(m.Support) / float64(n)
		eval.WeightedAvg.Precision += m.Precision * w
		eval.WeightedAvg.Recall += m.Recall * w
		eval.WeightedAvg.F1 += m.F1 * w
	}
	eval.MacroAvg.Support = n
	eval.WeightedAvg.Support = n
	return eval
}

// EvaluateModel predicts every test row and scores the result.
func EvaluateModel(model Classifier, testX [][]float64, testY []int) (Evaluation, error) {
	predicted := make([]int, len(testX))
	for i, feature := range testX {
		label, _, err := model.Predict(feature)
		if err != nil {
			return Evaluation{}, fmt.Errorf("predict row %d: %w", i, err)
		}
		predicted[i] = label
	}
	return Evaluate(testY, predicted), nil
}

// Report renders a plain-text classification report.
func (e Evaluation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, m := range e.Classes {
		fmt.Fprintf(&b, "%14d %9.2f %9.2f %9.2f %9d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%14s %9s %9s %9.2f %9d\n", "accuracy", "", "", e.Accuracy, e.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "macro avg", e.MacroAvg.Precision, e.MacroAvg.Recall, e.MacroAvg.F1, e.MacroAvg.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "weighted avg", e.WeightedAvg.Precision, e.WeightedAvg.Recall, e.WeightedAvg.F1, e.WeightedAvg.Support)
	return b.String()
}
