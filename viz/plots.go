// Package viz produces diagnostic plots for a trained surrogate. It is a
// reporting collaborator only: plot failures are reported to the caller but
// never abort a training run.
package viz

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// PredictedVsActual writes one scatter plot per target into dir, predicted
// values against held-out actuals with the identity line for reference.
func PredictedVsActual(yTrue, yPred mat.Matrix, dir string) error {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue != rPred || cTrue != cPred {
		return errors.NewDimensionError("viz.PredictedVsActual", rTrue, rPred, 0)
	}
	if cTrue != len(blade.TargetNames) {
		return errors.NewDimensionError("viz.PredictedVsActual", len(blade.TargetNames), cTrue, 1)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create plot directory %q", dir)
	}

	for j, name := range blade.TargetNames {
		pts := make(plotter.XYs, rTrue)
		min, max := yTrue.At(0, j), yTrue.At(0, j)
		for i := 0; i < rTrue; i++ {
			pts[i].X = yTrue.At(i, j)
			pts[i].Y = yPred.At(i, j)
			if pts[i].X < min {
				min = pts[i].X
			}
			if pts[i].X > max {
				max = pts[i].X
			}
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("Predicted vs actual: %s", name)
		p.X.Label.Text = "actual"
		p.Y.Label.Text = "predicted"

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.Wrapf(err, "failed to build scatter for %s", name)
		}
		identity, err := plotter.NewLine(plotter.XYs{{X: min, Y: min}, {X: max, Y: max}})
		if err != nil {
			return errors.Wrapf(err, "failed to build identity line for %s", name)
		}
		p.Add(scatter, identity)

		path := filepath.Join(dir, "pred_vs_actual_"+name+".png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return errors.Wrapf(err, "failed to save plot %q", path)
		}
	}
	return nil
}

// FeatureHistograms writes one histogram per feature into dir, showing the
// sampled input distribution.
func FeatureHistograms(X mat.Matrix, dir string) error {
	rows, cols := X.Dims()
	if cols != len(blade.FeatureNames) {
		return errors.NewDimensionError("viz.FeatureHistograms", len(blade.FeatureNames), cols, 1)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create plot directory %q", dir)
	}

	for j, name := range blade.FeatureNames {
		vals := make(plotter.Values, rows)
		for i := 0; i < rows; i++ {
			vals[i] = X.At(i, j)
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("Distribution: %s", name)
		p.X.Label.Text = name
		p.Y.Label.Text = "count"

		hist, err := plotter.NewHist(vals, 16)
		if err != nil {
			return errors.Wrapf(err, "failed to build histogram for %s", name)
		}
		p.Add(hist)

		path := filepath.Join(dir, "hist_"+name+".png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return errors.Wrapf(err, "failed to save plot %q", path)
		}
	}
	return nil
}
