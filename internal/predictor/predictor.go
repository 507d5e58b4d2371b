// Package predictor evaluates the pre-trained diabetes classifier. The model
// and standardization parameters are produced by an offline training step and
// loaded read-only at startup; a missing or malformed artifact is fatal.
package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// FeatureCount is the fixed size of the input vector the classifier was
// trained on.
const FeatureCount = 8

// Prediction result labels, persisted verbatim in reports.
const (
	ResultPositive = "Diabetes Detected"
	ResultNegative = "No Diabetes"
)

// Supported model kinds in the exported artifact.
const (
	modelLogisticRegression = "logistic_regression"
	modelRandomForest       = "random_forest"
)

// scaler holds the per-feature standardization parameters fixed at training
// time: x' = (x - mean) / scale.
type scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// treeNode is one node of a decision tree. Feature < 0 marks a leaf, whose
// Value holds the class probability distribution [p0, p1].
type treeNode struct {
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold"`
	Left      int        `json:"left"`
	Right     int        `json:"right"`
	Value     [2]float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// model is the exported classifier artifact. Exactly one of the
// logistic-regression fields or the tree ensemble is populated, selected by
// Kind.
type model struct {
	Kind         string    `json:"model"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
	Trees        []tree    `json:"trees,omitempty"`
}

// Outcome is the result of one classifier evaluation.
type Outcome struct {
	Result      string  // ResultPositive or ResultNegative
	Positive    bool
	Probability float64 // confidence as a percentage, max(p0, p1) * 100
	P0, P1      float64
}

// Predictor holds the loaded artifacts and the decision threshold. It is
// immutable after Load and safe for concurrent use.
type Predictor struct {
	scaler    scaler
	model     model
	threshold float64
}

// Load reads and validates the classifier artifacts. Any error here must be
// treated as fatal by the caller; the service must not start degraded.
func Load(modelPath, scalerPath string, threshold float64) (*Predictor, error) {
	p := &Predictor{threshold: threshold}

	if err := readJSON(scalerPath, &p.scaler); err != nil {
		return nil, fmt.Errorf("loading scaler artifact: %w", err)
	}
	if len(p.scaler.Mean) != FeatureCount || len(p.scaler.Scale) != FeatureCount {
		return nil, fmt.Errorf("scaler artifact must carry %d mean/scale pairs", FeatureCount)
	}
	for i, s := range p.scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler artifact has zero scale for feature %d", i)
		}
	}

	if err := readJSON(modelPath, &p.model); err != nil {
		return nil, fmt.Errorf("loading model artifact: %w", err)
	}
	switch p.model.Kind {
	case modelLogisticRegression:
		if len(p.model.Coefficients) != FeatureCount {
			return nil, fmt.Errorf("logistic regression artifact must carry %d coefficients", FeatureCount)
		}
	case modelRandomForest:
		if len(p.model.Trees) == 0 {
			return nil, fmt.Errorf("random forest artifact carries no trees")
		}
		for i, t := range p.model.Trees {
			if len(t.Nodes) == 0 {
				return nil, fmt.Errorf("random forest tree %d is empty", i)
			}
			for j, n := range t.Nodes {
				if n.Feature >= FeatureCount {
					return nil, fmt.Errorf("random forest tree %d node %d splits on unknown feature %d", i, j, n.Feature)
				}
				if n.Feature < 0 {
					continue
				}
				// Children must point strictly forward in the node array.
				// This holds for every exported sklearn tree and guarantees
				// evaluation terminates; anything else is a malformed
				// artifact and fails the load.
				if n.Left <= j || n.Left >= len(t.Nodes) || n.Right <= j || n.Right >= len(t.Nodes) {
					return nil, fmt.Errorf("random forest tree %d node %d has invalid children", i, j)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported model kind %q", p.model.Kind)
	}

	return p, nil
}

// Predict standardizes the input vector and evaluates the classifier.
// Deterministic: identical inputs against the same artifacts yield identical
// outcomes.
func (p *Predictor) Predict(features []float64) (Outcome, error) {
	if len(features) != FeatureCount {
		return Outcome{}, fmt.Errorf("expected %d features, got %d", FeatureCount, len(features))
	}

	scaled := make([]float64, FeatureCount)
	for i, x := range features {
		scaled[i] = (x - p.scaler.Mean[i]) / p.scaler.Scale[i]
	}

	var p1 float64
	switch p.model.Kind {
	case modelLogisticRegression:
		z := p.model.Intercept
		for i, c := range p.model.Coefficients {
			z += c * scaled[i]
		}
		p1 = sigmoid(z)
	case modelRandomForest:
		for _, t := range p.model.Trees {
			p1 += t.evaluate(scaled)
		}
		p1 /= float64(len(p.model.Trees))
	}

	p0 := 1 - p1
	positive := p1 >= p.threshold

	result := ResultNegative
	if positive {
		result = ResultPositive
	}

	return Outcome{
		Result:      result,
		Positive:    positive,
		Probability: math.Max(p0, p1) * 100,
		P0:          p0,
		P1:          p1,
	}, nil
}

// evaluate walks the tree for the given (standardized) vector and returns the
// positive-class probability at the reached leaf.
func (t tree) evaluate(scaled []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Feature < 0 {
			return node.Value[1]
		}
		if scaled[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
