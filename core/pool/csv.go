package pool

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// CSVOptions describes the column layout of a delimited pool file. Every
// column that is neither the target nor the weight is a feature, in file
// order.
type CSVOptions struct {
	TargetColumn int
	WeightColumn int // -1 when the file has no weights
	HasHeader    bool
	Delimiter    rune // defaults to ','
}

// DefaultCSVOptions reads the target from the first column, no weights.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{TargetColumn: 0, WeightColumn: -1}
}

// LoadCSVFile loads a pool from a delimited file.
func LoadCSVFile(path string, opts CSVOptions) (*Pool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, diErrors.Wrapf(err, "failed to open pool %s", path)
	}
	defer func() { _ = f.Close() }()
	return LoadCSV(f, opts)
}

// LoadCSV loads a pool from delimited text.
func LoadCSV(r io.Reader, opts CSVOptions) (*Pool, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, diErrors.NewModelError("pool.LoadCSV", "malformed CSV", err)
	}
	if opts.HasHeader && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, diErrors.NewModelError("pool.LoadCSV", "no documents", diErrors.ErrEmptyData)
	}

	width := len(records[0])
	if opts.TargetColumn < 0 || opts.TargetColumn >= width {
		return nil, diErrors.NewValueError("pool.LoadCSV", fmt.Sprintf("target column %d outside [0, %d)", opts.TargetColumn, width))
	}
	if opts.WeightColumn >= width || opts.WeightColumn == opts.TargetColumn {
		return nil, diErrors.NewValueError("pool.LoadCSV", fmt.Sprintf("invalid weight column %d", opts.WeightColumn))
	}
	featureCount := width - 1
	if opts.WeightColumn >= 0 {
		featureCount--
	}

	rows := len(records)
	features := make([]float64, 0, rows*featureCount)
	target := make([]float64, rows)
	var weights []float64
	if opts.WeightColumn >= 0 {
		weights = make([]float64, rows)
	}

	for i, record := range records {
		if len(record) != width {
			return nil, diErrors.NewDimensionError("pool.LoadCSV", width, len(record), 1)
		}
		for j, field := range record {
			v, err := parseFloat(field)
			if err != nil {
				return nil, diErrors.NewValueError("pool.LoadCSV", fmt.Sprintf("row %d column %d: %q is not a number", i, j, field))
			}
			switch j {
			case opts.TargetColumn:
				target[i] = v
			case opts.WeightColumn:
				weights[i] = v
			default:
				features = append(features, v)
			}
		}
	}

	if featureCount == 0 {
		return nil, diErrors.NewModelError("pool.LoadCSV", "no feature columns", diErrors.ErrEmptyData)
	}
	return New(mat.NewDense(rows, featureCount, features), target, weights)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na":
		return strconv.ParseFloat("NaN", 64)
	}
	return strconv.ParseFloat(s, 64)
}
