package surrogate_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/surrogate"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/train"
)

func fitSmallModel(t *testing.T) *surrogate.Model {
	t.Helper()
	ds, err := blade.Generate(120, 42)
	require.NoError(t, err)

	cfg := train.DefaultConfig()
	cfg.NEstimators = 15
	m, _, err := train.Fit(ds, cfg)
	require.NoError(t, err)
	return m
}

func TestPredictFiniteOutputs(t *testing.T) {
	m := fitSmallModel(t)

	preds, err := m.Predict(blade.FeatureVector{
		YoungsModulus: 70,
		Density:       2700,
		PoissonsRatio: 0.33,
		Thickness:     5,
		Length:        1,
		Pressure:      101325,
		Frequency:     300,
	})
	require.NoError(t, err)

	for j, v := range preds.Values() {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "target %s is not finite", blade.TargetNames[j])
		band := m.Bands[blade.TargetNames[j]]
		assert.GreaterOrEqual(t, v, band.Min)
		assert.LessOrEqual(t, v, band.Max)
	}
}

func TestPredictRejectsOutOfRange(t *testing.T) {
	m := fitSmallModel(t)

	f := blade.BaselineFeatures
	f.PoissonsRatio = 2.0
	_, err := m.Predict(f)
	require.Error(t, err)
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSaveLoadPredictIdentical(t *testing.T) {
	m := fitSmallModel(t)
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, surrogate.Save(m, path))

	loaded, err := surrogate.Load(path)
	require.NoError(t, err)

	for seed := uint64(0); seed < 3; seed++ {
		ds, err := blade.Generate(10, seed)
		require.NoError(t, err)
		for i := 0; i < ds.NumSamples(); i++ {
			f, _ := ds.Row(i)
			want, err := m.Predict(f)
			require.NoError(t, err)
			got, err := loaded.Predict(f)
			require.NoError(t, err)
			assert.Equal(t, want, got, "row %d: reloaded model must predict identically", i)
		}
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := surrogate.Load(filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
	var artErr *errors.ArtifactError
	assert.True(t, errors.As(err, &artErr), "expected ArtifactError, got %v", err)
}

func TestLoadCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, err := surrogate.Load(path)
	require.Error(t, err)
	var artErr *errors.ArtifactError
	assert.True(t, errors.As(err, &artErr))
}

func TestPredictUnknownAlgorithm(t *testing.T) {
	m := &surrogate.Model{Algorithm: "mystery"}
	_, err := m.Predict(blade.BaselineFeatures)
	assert.Error(t, err)
}
