package pool

import (
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// ReadNpy loads a pool from NumPy files: a 2-D feature matrix, a target
// vector and, when weightsPath is not empty, a weight vector.
func ReadNpy(featuresPath, targetPath, weightsPath string) (*Pool, error) {
	features := &mat.Dense{}
	if err := readNpy(featuresPath, features); err != nil {
		return nil, err
	}

	var target []float64
	if err := readNpy(targetPath, &target); err != nil {
		return nil, err
	}

	var weights []float64
	if weightsPath != "" {
		if err := readNpy(weightsPath, &weights); err != nil {
			return nil, err
		}
	}
	return New(features, target, weights)
}

func readNpy(path string, dst interface{}) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return diErrors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	r, err := npyio.NewReader(f)
	if err != nil {
		return diErrors.NewModelError("pool.ReadNpy", "malformed npy file "+path, err)
	}
	if err := r.Read(dst); err != nil {
		return diErrors.NewModelError("pool.ReadNpy", "cannot decode "+path, err)
	}
	return nil
}
