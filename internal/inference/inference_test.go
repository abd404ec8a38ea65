package inference

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stump splits on feature f at threshold th
func stump(f int, th, left, right float64) Tree {
	return Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{f, -2, -2},
		Threshold:     []float64{th, -2, -2},
		Value:         []float64{0, left, right},
	}
}

func row(airline, route float64) []float64 {
	return []float64{738895, airline, route, 0, 27.5, 1009, 12}
}

func TestLinearModel_Predict(t *testing.T) {
	m, err := NewLinearModel("LinearRegression", 2, []float64{0, 1, 0, 0, 0.5, 0, 0})
	require.NoError(t, err)

	out, err := m.Predict([][]float64{row(3, 0)})
	require.NoError(t, err)
	assert.InDelta(t, 2+3+0.5*27.5, out[0], 1e-9)
	assert.Equal(t, "LinearRegression", m.Name())
	assert.Equal(t, FeatureCount, m.NumFeatures())
}

func TestModel_RejectsBadRows(t *testing.T) {
	m, err := NewLinearModel("LinearRegression", 0, make([]float64, FeatureCount))
	require.NoError(t, err)

	_, err = m.Predict(nil)
	assert.Error(t, err)

	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.ErrorContains(t, err, "expects 7")

	bad := row(0, 0)
	bad[4] = math.NaN()
	_, err = m.Predict([][]float64{bad})
	assert.True(t, errors.Is(err, ErrNonFiniteInput))
}

func TestTreeEnsemble_SingleTree(t *testing.T) {
	m, err := NewTreeEnsemble("DecisionTreeRegressor", SingleTree, FeatureCount, []Tree{stump(1, 0.5, 5, 20)}, 0, 1)
	require.NoError(t, err)

	out, err := m.Predict([][]float64{row(0, 0), row(1, 0)})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 20}, out)
}

func TestTreeEnsemble_ThresholdGoesLeft(t *testing.T) {
	m, err := NewTreeEnsemble("DecisionTreeRegressor", SingleTree, FeatureCount, []Tree{stump(1, 1, 5, 20)}, 0, 1)
	require.NoError(t, err)

	out, err := m.Predict([][]float64{row(1, 0)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, out[0])
}

func TestTreeEnsemble_Averaging(t *testing.T) {
	trees := []Tree{stump(1, 0.5, 4, 10), stump(2, 0.5, 2, 30)}
	m, err := NewTreeEnsemble("RandomForestRegressor", Averaging, FeatureCount, trees, 0, 1)
	require.NoError(t, err)

	out, err := m.Predict([][]float64{row(0, 0), row(1, 1)})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out[0], 1e-9)
	assert.InDelta(t, 20.0, out[1], 1e-9)
}

func TestTreeEnsemble_Boosting(t *testing.T) {
	trees := []Tree{stump(1, 0.5, -1, 4), stump(2, 0.5, 1, 6)}
	m, err := NewTreeEnsemble("GradientBoostingRegressor", Boosting, FeatureCount, trees, 10, 0.5)
	require.NoError(t, err)

	out, err := m.Predict([][]float64{row(0, 0), row(1, 1)})
	require.NoError(t, err)
	assert.InDelta(t, 10+0.5*0, out[0], 1e-9)
	assert.InDelta(t, 10+0.5*10, out[1], 1e-9)
}

func TestTree_Validate(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
	}{
		{"empty", Tree{}},
		{"mismatched lengths", Tree{ChildrenLeft: []int{-1}, ChildrenRight: []int{-1}, Feature: []int{0}, Threshold: []float64{0}}},
		{"one child", Tree{
			ChildrenLeft: []int{1, -1}, ChildrenRight: []int{-1, -1},
			Feature: []int{0, -2}, Threshold: []float64{0, 0}, Value: []float64{0, 1},
		}},
		{"backward edge", Tree{
			ChildrenLeft: []int{1, 0, -1}, ChildrenRight: []int{2, 2, -1},
			Feature: []int{0, 0, -2}, Threshold: []float64{0, 0, 0}, Value: []float64{0, 0, 1},
		}},
		{"feature out of range", stump(FeatureCount, 0, 1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.tree.Validate(FeatureCount))
		})
	}
}

func TestNewTreeEnsemble_Invalid(t *testing.T) {
	_, err := NewTreeEnsemble("x", Averaging, FeatureCount, nil, 0, 1)
	assert.Error(t, err)

	_, err = NewTreeEnsemble("x", SingleTree, FeatureCount, []Tree{stump(0, 0, 1, 2), stump(0, 0, 1, 2)}, 0, 1)
	assert.Error(t, err)

	_, err = NewTreeEnsemble("x", Averaging, 0, []Tree{stump(0, 0, 1, 2)}, 0, 1)
	assert.Error(t, err)
}

const validBundle = `{
  "format_version": 1,
  "model": {
    "type": "random_forest",
    "n_features": 7,
    "trees": [
      {"children_left": [1, -1, -1], "children_right": [2, -1, -1], "feature": [1, -2, -2], "threshold": [0.5, -2, -2], "value": [0, 4, 10]},
      {"children_left": [-1], "children_right": [-1], "feature": [-2], "threshold": [-2], "value": [6]}
    ]
  },
  "label_encoders": {
    "Maskapai": ["Garuda Indonesia", "Lion Air"],
    "Rute": ["Jakarta-Bali", "Jakarta-Padang"],
    "Deskripsi_tujuan": ["berawan", "cerah"]
  }
}`

func TestParseBundle(t *testing.T) {
	b, err := ParseBundle([]byte(validBundle))
	require.NoError(t, err)

	assert.Equal(t, "RandomForestRegressor", b.Model.Name())
	assert.Equal(t, 2, b.Encoders.Airline.Len())

	code, err := b.Encoders.Route.Transform("Jakarta-Padang")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	out, err := b.Model.Predict([][]float64{row(1, 0)})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, out[0], 1e-9)
}

func TestParseBundle_Linear(t *testing.T) {
	data := `{
	  "model": {"type": "linear", "name": "Ridge", "intercept": 1.5, "coefficients": [0, 0, 0, 0, 0, 0, 0]},
	  "label_encoders": {"Maskapai": ["A"], "Rute": ["X-Y"], "Deskripsi_tujuan": ["cerah"]}
	}`
	b, err := ParseBundle([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "Ridge", b.Model.Name())
}

func TestParseBundle_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json object", `[]`},
		{"missing encoders", `{"model": {"type": "linear", "coefficients": [1]}}`},
		{"unknown model type", `{"model": {"type": "svm"}, "label_encoders": {"Maskapai": ["A"], "Rute": ["X-Y"], "Deskripsi_tujuan": ["c"]}}`},
		{"duplicate labels", `{"model": {"type": "linear", "coefficients": [0,0,0,0,0,0,0]}, "label_encoders": {"Maskapai": ["A", "A"], "Rute": ["X-Y"], "Deskripsi_tujuan": ["c"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBundle([]byte(tt.data))
			var se *SchemaError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.NotEmpty(t, se.Violations)
		})
	}
}

func TestParseBundle_WrongFeatureCount(t *testing.T) {
	data := `{
	  "model": {"type": "linear", "coefficients": [1, 2, 3]},
	  "label_encoders": {"Maskapai": ["A"], "Rute": ["X-Y"], "Deskripsi_tujuan": ["c"]}
	}`
	_, err := ParseBundle([]byte(data))
	assert.ErrorContains(t, err, "expects 3 features")
}

func TestParseBundle_BoostingNeedsLearningRate(t *testing.T) {
	data := `{
	  "model": {"type": "gradient_boosting", "n_features": 7, "trees": [{"children_left": [-1], "children_right": [-1], "feature": [-2], "threshold": [-2], "value": [1]}]},
	  "label_encoders": {"Maskapai": ["A"], "Rute": ["X-Y"], "Deskripsi_tujuan": ["c"]}
	}`
	_, err := ParseBundle([]byte(data))
	assert.ErrorContains(t, err, "learning_rate")
}

func TestLoadBundleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(validBundle), 0o644))

	b, err := LoadBundleFile(path)
	require.NoError(t, err)
	assert.NotNil(t, b.Model)

	_, err = LoadBundleFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
