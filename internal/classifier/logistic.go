package classifier

import (
	"fmt"
	"math"
)

// Logistic is a binary LogisticRegression: p(class 1) = sigmoid(w·x + b).
type Logistic struct {
	classes   []int
	coef      []float64
	intercept float64
}

func newLogistic(spec Spec) (*Logistic, error) {
	if len(spec.Classes) != 2 {
		return nil, fmt.Errorf("logistic_regression is binary, got %d classes", len(spec.Classes))
	}
	if len(spec.Coef) != spec.NFeatures {
		return nil, fmt.Errorf("%d coefficients for %d features", len(spec.Coef), spec.NFeatures)
	}
	return &Logistic{
		classes:   append([]int(nil), spec.Classes...),
		coef:      append([]float64(nil), spec.Coef...),
		intercept: spec.Intercept,
	}, nil
}

func (l *Logistic) PredictProba(x []float64) ([]float64, error) {
	if err := checkLen(x, len(l.coef)); err != nil {
		return nil, err
	}
	z := l.intercept
	for i, w := range l.coef {
		z += w * x[i]
	}
	p := 1 / (1 + math.Exp(-z))
	return []float64{1 - p, p}, nil
}

func (l *Logistic) Classes() []int   { return l.classes }
func (l *Logistic) NumFeatures() int { return len(l.coef) }
func (l *Logistic) Kind() string     { return KindLogisticRegression }
