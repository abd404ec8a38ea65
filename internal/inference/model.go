package inference

import (
	"errors"
	"fmt"
	"math"
)

// FeatureCount is the width of the delay model's feature vector:
// [date_ordinal, airline_code, route_code, weather_code, temperature, pressure, wind_speed]
const FeatureCount = 7

// ErrNonFiniteInput is returned when a feature value is NaN or infinite
var ErrNonFiniteInput = errors.New("input contains NaN or infinity")

// Model is a pre-fitted deterministic regressor
type Model interface {
	// Predict returns one value per input row
	Predict(rows [][]float64) ([]float64, error)
	// Name is the model class name shown in debug output
	Name() string
	// NumFeatures is the expected row width
	NumFeatures() int
}

func checkRows(rows [][]float64, width int) error {
	if len(rows) == 0 {
		return fmt.Errorf("no input rows")
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, model expects %d", i, len(row), width)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d: %w", i, ErrNonFiniteInput)
			}
		}
	}
	return nil
}

// LinearModel computes intercept + coefficients·x
type LinearModel struct {
	name         string
	intercept    float64
	coefficients []float64
}

// NewLinearModel creates a linear regressor
func NewLinearModel(name string, intercept float64, coefficients []float64) (*LinearModel, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("linear model has no coefficients")
	}
	coef := make([]float64, len(coefficients))
	copy(coef, coefficients)
	return &LinearModel{name: name, intercept: intercept, coefficients: coef}, nil
}

func (m *LinearModel) Name() string     { return m.name }
func (m *LinearModel) NumFeatures() int { return len(m.coefficients) }

func (m *LinearModel) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, len(m.coefficients)); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		sum := m.intercept
		for j, c := range m.coefficients {
			sum += c * row[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Tree is a regression tree in flat array layout. Node 0 is the root;
// a node is a leaf when ChildrenLeft is -1. Samples go left when
// x[Feature] <= Threshold.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Validate checks array shapes and that every child index points forward,
// which guarantees traversal terminates.
func (t *Tree) Validate(numFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays have mismatched lengths")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == -1 || right == -1 {
			if left != right {
				return fmt.Errorf("node %d has exactly one child", i)
			}
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has child index out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d, model has %d", i, t.Feature[i], numFeatures)
		}
	}
	return nil
}

func (t *Tree) predictRow(row []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if row[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// EnsembleKind selects how tree outputs are combined
type EnsembleKind int

const (
	// SingleTree returns the output of the only tree
	SingleTree EnsembleKind = iota
	// Averaging returns the mean of tree outputs (random forest)
	Averaging
	// Boosting returns init + learningRate * sum of tree outputs
	Boosting
)

// TreeEnsemble covers decision tree, random forest and gradient boosting regressors
type TreeEnsemble struct {
	name         string
	kind         EnsembleKind
	numFeatures  int
	trees        []Tree
	initValue    float64
	learningRate float64
}

// NewTreeEnsemble validates the trees and builds the ensemble
func NewTreeEnsemble(name string, kind EnsembleKind, numFeatures int, trees []Tree, initValue, learningRate float64) (*TreeEnsemble, error) {
	if numFeatures <= 0 {
		return nil, fmt.Errorf("model must declare a positive feature count")
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("tree model has no trees")
	}
	if kind == SingleTree && len(trees) != 1 {
		return nil, fmt.Errorf("decision tree model has %d trees, expected 1", len(trees))
	}
	for i := range trees {
		if err := trees[i].Validate(numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}

	return &TreeEnsemble{
		name:         name,
		kind:         kind,
		numFeatures:  numFeatures,
		trees:        trees,
		initValue:    initValue,
		learningRate: learningRate,
	}, nil
}

func (m *TreeEnsemble) Name() string     { return m.name }
func (m *TreeEnsemble) NumFeatures() int { return m.numFeatures }

func (m *TreeEnsemble) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, m.numFeatures); err != nil {
		return nil, err
	}

	out := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for t := range m.trees {
			sum += m.trees[t].predictRow(row)
		}

		switch m.kind {
		case Averaging:
			out[i] = sum / float64(len(m.trees))
		case Boosting:
			out[i] = m.initValue + m.learningRate*sum
		default:
			out[i] = sum
		}
	}
	return out, nil
}
