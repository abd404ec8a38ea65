package inference

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"flight-delay-predictor/internal/catalog"
)

//go:embed bundle.schema.json
var bundleSchema string

// Model type identifiers accepted in a bundle
const (
	TypeLinear           = "linear"
	TypeDecisionTree     = "decision_tree"
	TypeRandomForest     = "random_forest"
	TypeGradientBoosting = "gradient_boosting"
)

// Bundle is the deserialized model artifact: the regressor plus the
// label encoders fitted alongside it
type Bundle struct {
	Model    Model
	Encoders *catalog.Encoders
}

type bundleFile struct {
	FormatVersion int                 `json:"format_version"`
	Model         modelSpec           `json:"model"`
	LabelEncoders map[string][]string `json:"label_encoders"`
}

type modelSpec struct {
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	NFeatures    int       `json:"n_features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	InitValue    float64   `json:"init_value"`
	LearningRate float64   `json:"learning_rate"`
	Trees        []Tree    `json:"trees"`
}

// SchemaError lists JSON Schema violations found in a bundle
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "model bundle failed schema validation: " + strings.Join(e.Violations, "; ")
}

// LoadBundleFile reads and parses a bundle from path
func LoadBundleFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle: %w", err)
	}
	return ParseBundle(data)
}

// ParseBundle validates data against the bundle schema and builds the
// model and encoders
func ParseBundle(data []byte) (*Bundle, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(bundleSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate model bundle: %w", err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return nil, &SchemaError{Violations: violations}
	}

	var file bundleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode model bundle: %w", err)
	}

	model, err := buildModel(file.Model)
	if err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	if model.NumFeatures() != FeatureCount {
		return nil, fmt.Errorf("invalid model: expects %d features, delay model uses %d", model.NumFeatures(), FeatureCount)
	}

	encoders, err := catalog.NewEncoders(file.LabelEncoders)
	if err != nil {
		return nil, fmt.Errorf("invalid label encoders: %w", err)
	}

	return &Bundle{Model: model, Encoders: encoders}, nil
}

func buildModel(def modelSpec) (Model, error) {
	name := def.Name
	switch def.Type {
	case TypeLinear:
		if name == "" {
			name = "LinearRegression"
		}
		return NewLinearModel(name, def.Intercept, def.Coefficients)
	case TypeDecisionTree:
		if name == "" {
			name = "DecisionTreeRegressor"
		}
		return NewTreeEnsemble(name, SingleTree, def.NFeatures, def.Trees, 0, 1)
	case TypeRandomForest:
		if name == "" {
			name = "RandomForestRegressor"
		}
		return NewTreeEnsemble(name, Averaging, def.NFeatures, def.Trees, 0, 1)
	case TypeGradientBoosting:
		if name == "" {
			name = "GradientBoostingRegressor"
		}
		if def.LearningRate == 0 {
			return nil, fmt.Errorf("gradient boosting model requires learning_rate")
		}
		return NewTreeEnsemble(name, Boosting, def.NFeatures, def.Trees, def.InitValue, def.LearningRate)
	default:
		return nil, fmt.Errorf("unsupported model type %q", def.Type)
	}
}
