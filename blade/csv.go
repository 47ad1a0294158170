package blade

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// WriteCSV writes the dataset to path with a header row of FeatureNames
// followed by TargetNames, overwriting any existing file.
func WriteCSV(d *Dataset, path string) error {
	if d.NumSamples() == 0 {
		return errors.NewValueError("WriteCSV", "empty dataset")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create dataset file %q", path)
	}
	defer file.Close()

	if err := WriteCSVTo(d, file); err != nil {
		return err
	}
	return file.Sync()
}

// WriteCSVTo writes the dataset in CSV form to w.
func WriteCSVTo(d *Dataset, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, FeatureNames...), TargetNames...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	n := d.NumSamples()
	record := make([]string, len(header))
	for i := 0; i < n; i++ {
		for j := range FeatureNames {
			record[j] = strconv.FormatFloat(d.X.At(i, j), 'g', -1, 64)
		}
		for j := range TargetNames {
			record[len(FeatureNames)+j] = strconv.FormatFloat(d.Y.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write CSV row %d", i)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV loads a dataset from path. The header must contain every feature
// and target column; extra columns are ignored, column order is free.
func ReadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset file %q", path)
	}
	defer file.Close()

	return readCSV(file, path)
}

func readCSV(r io.Reader, path string) (*Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read CSV header of %q", path)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	for _, name := range append(append([]string{}, FeatureNames...), TargetNames...) {
		if _, ok := colIndex[name]; !ok {
			return nil, errors.NewSchemaError(path, name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read CSV rows of %q", path)
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("ReadCSV", "dataset has no rows")
	}

	n := len(records)
	X := mat.NewDense(n, len(FeatureNames), nil)
	Y := mat.NewDense(n, len(TargetNames), nil)
	parse := func(row int, col string) (float64, error) {
		v, err := strconv.ParseFloat(records[row][colIndex[col]], 64)
		if err != nil {
			return 0, errors.NewValidationError(col, "non-numeric value in dataset", records[row][colIndex[col]])
		}
		return v, nil
	}
	for i := 0; i < n; i++ {
		for j, name := range FeatureNames {
			v, err := parse(i, name)
			if err != nil {
				return nil, err
			}
			X.Set(i, j, v)
		}
		for j, name := range TargetNames {
			v, err := parse(i, name)
			if err != nil {
				return nil, err
			}
			Y.Set(i, j, v)
		}
	}

	return &Dataset{X: X, Y: Y}, nil
}
