package model

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// modelJSON is the on-disk JSON layout of an oblivious-tree model.
type modelJSON struct {
	ModelInfo struct {
		Params json.RawMessage `json:"params"`
	} `json:"model_info"`
	FeaturesCount  int             `json:"features_count"`
	ObliviousTrees []ObliviousTree `json:"oblivious_trees"`
}

// LoadFromFile loads a model from a JSON file.
func LoadFromFile(filePath string) (*Model, error) {
	// Clean the file path to prevent path traversal attacks
	cleanPath := filepath.Clean(filePath)
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, diErrors.Wrapf(err, "failed to open model %s", cleanPath)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromString loads a model from its JSON text.
func LoadFromString(modelStr string) (*Model, error) {
	return LoadFromReader(strings.NewReader(modelStr))
}

// LoadFromReader loads a model from an io.Reader. The parameter blob is
// parsed and validated, so configuration errors surface here.
func LoadFromReader(reader io.Reader) (*Model, error) {
	var raw modelJSON
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		return nil, diErrors.NewModelError("model.Load", "malformed model JSON", err)
	}
	if len(raw.ModelInfo.Params) == 0 {
		return nil, diErrors.NewModelError("model.Load", "missing model_info.params", diErrors.ErrInvalidParams)
	}

	params, err := ParseParams(raw.ModelInfo.Params)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Trees:        raw.ObliviousTrees,
		Params:       params,
		FeatureCount: raw.FeaturesCount,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
