package preprocessing

import (
	"bytes"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	coremodel "github.com/thesoulseizure/WindTurbineBladeOptimization/core/model"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Each column must have mean 0 and unit standard deviation.
	for j := 0; j < 2; j++ {
		var sum, sumSq float64
		for i := 0; i < 4; i++ {
			sum += scaled.At(i, j)
			sumSq += scaled.At(i, j) * scaled.At(i, j)
		}
		mean := sum / 4
		std := math.Sqrt(sumSq/4 - mean*mean)
		if math.Abs(mean) > 1e-12 {
			t.Errorf("Column %d: expected mean 0, got %g", j, mean)
		}
		if math.Abs(std-1) > 1e-12 {
			t.Errorf("Column %d: expected std 1, got %g", j, std)
		}
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if scaled.At(i, 0) != 0 {
			t.Errorf("Constant column must scale to 0, got %g", scaled.At(i, 0))
		}
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScaler()
	if _, err := scaler.Transform(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Expected NotFittedError before Fit")
	}
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := scaler.Transform(mat.NewDense(1, 3, []float64{1, 2, 3})); err == nil {
		t.Error("Expected dimension error for wrong feature count")
	}
}

func TestStandardScalerGobRoundTrip(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})

	scaler := NewStandardScaler()
	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	var buf bytes.Buffer
	if err := coremodel.SaveModelToWriter(scaler, &buf); err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	restored := NewStandardScaler()
	if err := coremodel.LoadModelFromReader(restored, &buf); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if !restored.IsFitted() {
		t.Fatal("Restored scaler must be fitted")
	}

	orig, err := scaler.Transform(X)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	rest, err := restored.Transform(X)
	if err != nil {
		t.Fatalf("Transform on restored scaler failed: %v", err)
	}
	if !mat.Equal(orig, rest) {
		t.Error("Restored scaler output differs from the original")
	}
}
