package features

import (
	"errors"
	"fmt"
	"math"
)

// ErrScalerShape is returned when scaler parameters do not cover exactly the
// direct slots.
var ErrScalerShape = errors.New("scaler shape mismatch")

// Scaler standardizes the direct slots with per-slot mean and scale learned
// at training time. It is immutable once built.
type Scaler struct {
	mean  [NumDirect]float64
	scale [NumDirect]float64
}

// NewScaler builds a Scaler from parameters in direct-slot order. Scales must
// be finite and non-zero.
func NewScaler(mean, scale []float64) (*Scaler, error) {
	if len(mean) != NumDirect || len(scale) != NumDirect {
		return nil, fmt.Errorf("%w: got %d means and %d scales, want %d", ErrScalerShape, len(mean), len(scale), NumDirect)
	}
	s := &Scaler{}
	for i := 0; i < NumDirect; i++ {
		if math.IsNaN(mean[i]) || math.IsInf(mean[i], 0) {
			return nil, fmt.Errorf("scaler mean for %s is not finite", directNames[i])
		}
		if scale[i] == 0 || math.IsNaN(scale[i]) || math.IsInf(scale[i], 0) {
			return nil, fmt.Errorf("scaler scale for %s must be finite and non-zero, got %v", directNames[i], scale[i])
		}
		s.mean[i] = mean[i]
		s.scale[i] = scale[i]
	}
	return s, nil
}

// IdentityScaler leaves values unchanged.
func IdentityScaler() *Scaler {
	s := &Scaler{}
	for i := range s.scale {
		s.scale[i] = 1
	}
	return s
}

// Transform standardizes the direct slots of v in place.
func (s *Scaler) Transform(v *Vector) {
	for i := 0; i < NumDirect; i++ {
		v[i] = (v[i] - s.mean[i]) / s.scale[i]
	}
}

// Inverse recovers the raw direct values from a transformed vector.
func (s *Scaler) Inverse(v Vector) [NumDirect]float64 {
	var raw [NumDirect]float64
	for i := 0; i < NumDirect; i++ {
		raw[i] = v[i]*s.scale[i] + s.mean[i]
	}
	return raw
}

// Mean returns the learned mean of a direct slot.
func (s *Scaler) Mean(slot Slot) float64 { return s.mean[slot] }

// Scale returns the learned scale of a direct slot.
func (s *Scaler) Scale(slot Slot) float64 { return s.scale[slot] }
