package predictor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identityScaler = `{
	"mean":  [0, 0, 0, 0, 0, 0, 0, 0],
	"scale": [1, 1, 1, 1, 1, 1, 1, 1]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadLogistic(t *testing.T, model string, threshold float64) *Predictor {
	t.Helper()
	p, err := Load(writeArtifact(t, "model.json", model), writeArtifact(t, "scaler.json", identityScaler), threshold)
	require.NoError(t, err)
	return p
}

func TestLoad_MissingArtifacts(t *testing.T) {
	scaler := writeArtifact(t, "scaler.json", identityScaler)
	model := writeArtifact(t, "model.json", `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":0}`)

	_, err := Load("does-not-exist.json", scaler, 0.5)
	assert.Error(t, err)

	_, err = Load(model, "does-not-exist.json", 0.5)
	assert.Error(t, err)
}

func TestLoad_RejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		scaler string
	}{
		{
			name:   "wrong scaler length",
			model:  `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":0}`,
			scaler: `{"mean":[0,0],"scale":[1,1]}`,
		},
		{
			name:   "zero scale",
			model:  `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":0}`,
			scaler: `{"mean":[0,0,0,0,0,0,0,0],"scale":[1,1,1,0,1,1,1,1]}`,
		},
		{
			name:   "wrong coefficient count",
			model:  `{"model":"logistic_regression","coefficients":[1,2],"intercept":0}`,
			scaler: identityScaler,
		},
		{
			name:   "unknown model kind",
			model:  `{"model":"gradient_boosting"}`,
			scaler: identityScaler,
		},
		{
			name:   "empty forest",
			model:  `{"model":"random_forest","trees":[]}`,
			scaler: identityScaler,
		},
		{
			name:   "self-referencing tree node",
			model:  `{"model":"random_forest","trees":[{"nodes":[{"feature":0,"threshold":10,"left":0,"right":0}]}]}`,
			scaler: identityScaler,
		},
		{
			name:   "backward-pointing tree node",
			model:  `{"model":"random_forest","trees":[{"nodes":[{"feature":0,"threshold":0,"left":1,"right":2},{"feature":0,"threshold":0,"left":0,"right":2},{"feature":-1,"value":[1,0]}]}]}`,
			scaler: identityScaler,
		},
		{
			name:   "out-of-range tree child",
			model:  `{"model":"random_forest","trees":[{"nodes":[{"feature":0,"threshold":0,"left":1,"right":7},{"feature":-1,"value":[1,0]}]}]}`,
			scaler: identityScaler,
		},
		{
			name:   "malformed json",
			model:  `{"model":`,
			scaler: identityScaler,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeArtifact(t, "model.json", tt.model), writeArtifact(t, "scaler.json", tt.scaler), 0.5)
			assert.Error(t, err)
		})
	}
}

func TestPredict_LogisticRegression(t *testing.T) {
	// All-zero coefficients: p1 is driven entirely by the intercept.
	p := loadLogistic(t, `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":1.0986122886681098}`, 0.5)

	// intercept = ln(3), so p1 = 3/4.
	out, err := p.Predict([]float64{6, 148, 72, 35, 80, 33.6, 0.627, 50})
	require.NoError(t, err)
	assert.Equal(t, ResultPositive, out.Result)
	assert.True(t, out.Positive)
	assert.InDelta(t, 0.75, out.P1, 1e-12)
	assert.InDelta(t, 75, out.Probability, 1e-9)
}

func TestPredict_AppliesStandardization(t *testing.T) {
	scaler := `{"mean":[2,0,0,0,0,0,0,0],"scale":[4,1,1,1,1,1,1,1]}`
	model := `{"model":"logistic_regression","coefficients":[1,0,0,0,0,0,0,0],"intercept":0}`
	p, err := Load(writeArtifact(t, "model.json", model), writeArtifact(t, "scaler.json", scaler), 0.5)
	require.NoError(t, err)

	// x0 = 6 standardizes to (6-2)/4 = 1, so p1 = sigmoid(1).
	out, err := p.Predict([]float64{6, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1)), out.P1, 1e-12)
}

func TestPredict_ThresholdBoundary(t *testing.T) {
	// p1 is exactly 0.5; the decision rule is p1 >= threshold.
	p := loadLogistic(t, `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":0}`, 0.5)

	out, err := p.Predict(make([]float64, FeatureCount))
	require.NoError(t, err)
	assert.True(t, out.Positive)
	assert.Equal(t, ResultPositive, out.Result)
	assert.InDelta(t, 50, out.Probability, 1e-12)

	// Same model under the historical 0.45 cutoff is also positive; under
	// 0.51 it flips negative.
	stricter := loadLogistic(t, `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":0}`, 0.51)
	out, err = stricter.Predict(make([]float64, FeatureCount))
	require.NoError(t, err)
	assert.False(t, out.Positive)
	assert.Equal(t, ResultNegative, out.Result)
}

func TestPredict_RandomForest(t *testing.T) {
	model := `{
		"model": "random_forest",
		"trees": [
			{"nodes": [{"feature": -1, "value": [0.2, 0.8]}]},
			{"nodes": [
				{"feature": 0, "threshold": 0, "left": 1, "right": 2},
				{"feature": -1, "value": [1, 0]},
				{"feature": -1, "value": [0, 1]}
			]}
		]
	}`
	p, err := Load(writeArtifact(t, "model.json", model), writeArtifact(t, "scaler.json", identityScaler), 0.5)
	require.NoError(t, err)

	// Feature 0 = 5 goes right in tree 2: p1 = (0.8 + 1) / 2 = 0.9.
	out, err := p.Predict([]float64{5, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, out.P1, 1e-12)
	assert.Equal(t, ResultPositive, out.Result)

	// Feature 0 = -5 goes left: p1 = (0.8 + 0) / 2 = 0.4.
	out, err = p.Predict([]float64{-5, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, out.P1, 1e-12)
	assert.Equal(t, ResultNegative, out.Result)
	assert.InDelta(t, 60, out.Probability, 1e-9)
}

func TestPredict_Deterministic(t *testing.T) {
	p := loadLogistic(t, `{"model":"logistic_regression","coefficients":[0.3,1.2,-0.1,0.05,-0.2,0.7,0.4,0.25],"intercept":-0.9}`, 0.5)

	vectors := [][]float64{
		{6, 148, 72, 35, 80, 33.6, 0.627, 50},
		{1, 85, 66, 29, 0, 26.6, 0.351, 31},
	}
	for _, v := range vectors {
		first, err := p.Predict(v)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := p.Predict(v)
			require.NoError(t, err)
			// Bit-identical, not merely close.
			assert.Equal(t, first, again)
		}
	}
}

func TestPredict_WrongVectorLength(t *testing.T) {
	p := loadLogistic(t, `{"model":"logistic_regression","coefficients":[0,0,0,0,0,0,0,0],"intercept":0}`, 0.5)

	_, err := p.Predict([]float64{1, 2, 3})
	assert.Error(t, err)

	_, err = p.Predict(nil)
	assert.Error(t, err)
}
