// Package classifier evaluates pre-trained scikit-learn style classifiers
// exported as plain data.
package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrFeatureCount is returned when an input vector has the wrong length.
	ErrFeatureCount = errors.New("feature count mismatch")
	// ErrUnsupportedKind is returned for an unknown model kind.
	ErrUnsupportedKind = errors.New("unsupported model kind")
)

// Model kinds accepted in Spec.Kind.
const (
	KindRandomForest       = "random_forest"
	KindDecisionTree       = "decision_tree"
	KindLogisticRegression = "logistic_regression"
)

// Model is a trained binary or multi-class classifier. Implementations are
// immutable and safe for concurrent use.
type Model interface {
	// PredictProba returns one probability per class, in Classes order.
	PredictProba(x []float64) ([]float64, error)
	Classes() []int
	NumFeatures() int
	Kind() string
}

// Spec is the exported form of a trained model.
type Spec struct {
	Kind         string     `json:"kind" yaml:"kind"`
	Classes      []int      `json:"classes" yaml:"classes"`
	NFeatures    int        `json:"n_features" yaml:"n_features"`
	FeatureNames []string   `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Trees        []TreeSpec `json:"trees,omitempty" yaml:"trees,omitempty"`
	Coef         []float64  `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept    float64    `json:"intercept,omitempty" yaml:"intercept,omitempty"`
}

// TreeSpec mirrors the arrays of a fitted sklearn tree_ attribute.
type TreeSpec struct {
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value"`
}

// Build validates spec and returns the model it describes.
func Build(spec Spec) (Model, error) {
	if spec.NFeatures <= 0 {
		return nil, fmt.Errorf("n_features must be positive, got %d", spec.NFeatures)
	}
	if len(spec.FeatureNames) > 0 && len(spec.FeatureNames) != spec.NFeatures {
		return nil, fmt.Errorf("%d feature names for %d features", len(spec.FeatureNames), spec.NFeatures)
	}

	switch spec.Kind {
	case KindRandomForest:
		return newForest(spec, KindRandomForest)
	case KindDecisionTree:
		if len(spec.Trees) != 1 {
			return nil, fmt.Errorf("decision_tree needs exactly one tree, got %d", len(spec.Trees))
		}
		return newForest(spec, KindDecisionTree)
	case KindLogisticRegression:
		return newLogistic(spec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, spec.Kind)
	}
}

func checkLen(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), n)
	}
	return nil
}
