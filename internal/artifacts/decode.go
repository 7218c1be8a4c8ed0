package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/lox/raincheck/internal/classifier"
	"github.com/lox/raincheck/internal/features"
)

// ErrLayout means an artifact was trained on a different column layout.
var ErrLayout = errors.New("artifact does not match the feature layout")

// ScalerSpec is the exported form of a fitted StandardScaler.
type ScalerSpec struct {
	FeatureNames []string  `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Mean         []float64 `json:"mean" yaml:"mean"`
	Scale        []float64 `json:"scale" yaml:"scale"`
}

// unmarshal decodes YAML for .yaml/.yml files and JSON otherwise.
func unmarshal(name string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

// DecodeScaler parses a scaler artifact and checks it covers the direct slots
// in order.
func DecodeScaler(name string, data []byte) (*features.Scaler, error) {
	var spec ScalerSpec
	if err := unmarshal(name, data, &spec); err != nil {
		return nil, fmt.Errorf("decode scaler %s: %w", name, err)
	}
	if len(spec.FeatureNames) > 0 {
		if err := compareNames(spec.FeatureNames, features.DirectNames()); err != nil {
			return nil, fmt.Errorf("scaler %s: %w", name, err)
		}
	}
	s, err := features.NewScaler(spec.Mean, spec.Scale)
	if err != nil {
		return nil, fmt.Errorf("scaler %s: %w", name, err)
	}
	return s, nil
}

// DecodeModel parses a classifier artifact and checks it was trained on the
// 114-slot layout with classes {0, 1}.
func DecodeModel(name string, data []byte) (classifier.Model, error) {
	var spec classifier.Spec
	if err := unmarshal(name, data, &spec); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", name, err)
	}
	if spec.NFeatures != features.NumSlots {
		return nil, fmt.Errorf("model %s: %w: n_features is %d, want %d", name, ErrLayout, spec.NFeatures, features.NumSlots)
	}
	if len(spec.FeatureNames) > 0 {
		if err := compareNames(spec.FeatureNames, features.SlotNames()); err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
	}
	if !slices.Equal(spec.Classes, []int{0, 1}) {
		return nil, fmt.Errorf("model %s: classes are %v, want [0 1]", name, spec.Classes)
	}

	m, err := classifier.Build(spec)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	return m, nil
}

func compareNames(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d feature names, want %d", ErrLayout, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: feature %d is %q, want %q", ErrLayout, i, got[i], want[i])
		}
	}
	return nil
}
