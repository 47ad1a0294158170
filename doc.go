// Package windturbine hosts an end-to-end surrogate modeling demo for
// wind turbine blade response prediction.
//
// The module generates synthetic blade response data from physics-inspired
// scaling laws, trains a multi-output regression surrogate on it, and serves
// predictions through a small web application.
//
// # Pipeline
//
// The three stages run as separate commands:
//
//	go run ./cmd/generate -n 150 -out data/wind_turbine_blade_data.csv
//	go run ./cmd/train -data data/wind_turbine_blade_data.csv -out models/blade_surrogate.gob
//	go run ./cmd/serve -model models/blade_surrogate.gob -addr :5002
//
// The server exposes an HTML form on GET / and a prediction endpoint on
// POST /predict that accepts both form submissions and JSON bodies.
//
// # Packages
//
//   - blade: feature/target schema, sampling ranges, response laws, CSV I/O
//   - ensemble: multi-output random forest regressor
//   - linear: multi-output linear regression via normal equations
//   - preprocessing: standard scaling for the linear pipeline
//   - metrics: regression metrics (MSE, RMSE, MAE, R²)
//   - train: train/test split, training pipeline, metrics sidecar
//   - surrogate: trained model artifact with gob persistence
//   - server: HTTP handlers and templates
//   - viz: predicted-vs-actual and histogram plots
//   - core/model: estimator base types and gob helpers
//   - core/parallel: parallel processing utilities
//
// # Example
//
// Training and querying a surrogate in-process:
//
//	ds, err := blade.Generate(150, 42)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, res, err := train.Fit(ds, train.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("test R²: %.3f\n", res.TestR2)
//
//	out, err := m.Predict(blade.BaselineFeatures)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("deformation: %.6g mm\n", out.Deformation)
package windturbine
