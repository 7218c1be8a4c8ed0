package classifier

import (
	"errors"
	"fmt"
	"math"
)

type tree struct {
	left, right []int
	feature     []int
	threshold   []float64
	proba       [][]float64 // normalized per node
}

// Forest averages the leaf class distributions of its trees, like
// RandomForestClassifier.predict_proba. A single-tree forest is a decision tree.
type Forest struct {
	kind      string
	classes   []int
	nFeatures int
	trees     []tree
}

func newForest(spec Spec, kind string) (*Forest, error) {
	if len(spec.Classes) < 2 {
		return nil, fmt.Errorf("need at least two classes, got %d", len(spec.Classes))
	}
	if len(spec.Trees) == 0 {
		return nil, errors.New("forest has no trees")
	}

	f := &Forest{
		kind:      kind,
		classes:   append([]int(nil), spec.Classes...),
		nFeatures: spec.NFeatures,
		trees:     make([]tree, len(spec.Trees)),
	}
	for i, ts := range spec.Trees {
		t, err := newTree(ts, spec.NFeatures, len(spec.Classes))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		f.trees[i] = t
	}
	return f, nil
}

func newTree(ts TreeSpec, nFeatures, nClasses int) (tree, error) {
	n := len(ts.ChildrenLeft)
	if n == 0 {
		return tree{}, errors.New("empty tree")
	}
	if len(ts.ChildrenRight) != n || len(ts.Feature) != n || len(ts.Threshold) != n || len(ts.Value) != n {
		return tree{}, errors.New("node arrays differ in length")
	}

	t := tree{
		left:      ts.ChildrenLeft,
		right:     ts.ChildrenRight,
		feature:   ts.Feature,
		threshold: ts.Threshold,
		proba:     make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		l, r := ts.ChildrenLeft[i], ts.ChildrenRight[i]
		if l == -1 {
			if r != -1 {
				return tree{}, fmt.Errorf("node %d has only one child", i)
			}
		} else {
			// Children always come after their parent, which rules out cycles.
			if l <= i || l >= n || r <= i || r >= n {
				return tree{}, fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
			}
			if f := ts.Feature[i]; f < 0 || f >= nFeatures {
				return tree{}, fmt.Errorf("node %d splits on feature %d of %d", i, f, nFeatures)
			}
		}

		if len(ts.Value[i]) != nClasses {
			return tree{}, fmt.Errorf("node %d has %d class values, want %d", i, len(ts.Value[i]), nClasses)
		}
		sum := 0.0
		for _, v := range ts.Value[i] {
			if v < 0 || math.IsNaN(v) {
				return tree{}, fmt.Errorf("node %d has invalid class value %v", i, v)
			}
			sum += v
		}
		p := make([]float64, nClasses)
		if sum > 0 {
			for c, v := range ts.Value[i] {
				p[c] = v / sum
			}
		}
		t.proba[i] = p
	}
	return t, nil
}

// leaf walks the tree to a leaf. Inputs are rounded to float32 first, as
// scikit-learn does before comparing against its float32-derived thresholds.
func (t *tree) leaf(x []float64) int {
	node := 0
	for t.left[node] != -1 {
		if float64(float32(x[t.feature[node]])) <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return node
}

// PredictProba returns the mean leaf distribution over all trees.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if err := checkLen(x, f.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(f.classes))
	for i := range f.trees {
		leaf := f.trees[i].leaf(x)
		for c, p := range f.trees[i].proba[leaf] {
			out[c] += p
		}
	}
	n := float64(len(f.trees))
	for c := range out {
		out[c] /= n
	}
	return out, nil
}

func (f *Forest) Classes() []int   { return f.classes }
func (f *Forest) NumFeatures() int { return f.nFeatures }
func (f *Forest) Kind() string     { return f.kind }

// NumTrees reports the ensemble size.
func (f *Forest) NumTrees() int { return len(f.trees) }
