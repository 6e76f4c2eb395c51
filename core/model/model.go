// Package model holds a trained oblivious-tree ensemble and the parts of its
// training configuration needed to replay leaf estimation.
//
// An oblivious tree applies the same split at every node of a level, so a
// tree of depth d is a list of d splits and 2^d leaf values; bit k of a
// document's leaf index is the outcome of split k.
//
// Example usage:
//
//	m, err := model.LoadFromFile("model.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	router, err := model.NewRouter(m, features)
//	leaves := router.LeafIndices(0) // leaf of every document in tree 0
package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// MaxTreeDepth bounds the depth of a single oblivious tree.
const MaxTreeDepth = 16

// Split sends a document to the right half of a level when its value of
// FeatureIndex is greater than Border.
type Split struct {
	FeatureIndex int     `json:"float_feature_index"`
	Border       float64 `json:"border"`
}

// ObliviousTree is one tree of the ensemble.
type ObliviousTree struct {
	Splits     []Split   `json:"splits"`
	LeafValues []float64 `json:"leaf_values,omitempty"`
}

// Depth returns the number of levels.
func (t ObliviousTree) Depth() int {
	return len(t.Splits)
}

// LeafCount returns 2^Depth.
func (t ObliviousTree) LeafCount() int {
	return 1 << len(t.Splits)
}

// Model is a trained additive ensemble of oblivious trees.
type Model struct {
	Trees        []ObliviousTree
	Params       Params
	FeatureCount int
}

// TreeCount returns the number of trees.
func (m *Model) TreeCount() int {
	return len(m.Trees)
}

// TreeSize returns the depth of tree i.
func (m *Model) TreeSize(i int) int {
	return m.Trees[i].Depth()
}

// LeafCount returns the number of leaves of tree i.
func (m *Model) LeafCount(i int) int {
	return m.Trees[i].LeafCount()
}

// Validate checks the structure of every tree and the parameters.
func (m *Model) Validate() error {
	if err := m.Params.Validate(); err != nil {
		return err
	}
	for i, tree := range m.Trees {
		if err := tree.validate(m.FeatureCount); err != nil {
			return diErrors.Wrapf(err, "tree %d", i)
		}
	}
	return nil
}

func (t ObliviousTree) validate(featureCount int) error {
	if t.Depth() > MaxTreeDepth {
		return diErrors.NewValidationError("depth", fmt.Sprintf("must be at most %d", MaxTreeDepth), t.Depth())
	}
	for _, s := range t.Splits {
		if s.FeatureIndex < 0 || (featureCount > 0 && s.FeatureIndex >= featureCount) {
			return diErrors.NewValueError("model.Validate",
				fmt.Sprintf("split feature %d outside [0, %d)", s.FeatureIndex, featureCount))
		}
	}
	if t.LeafValues != nil && len(t.LeafValues) != t.LeafCount() {
		return diErrors.NewDimensionError("model.Validate", t.LeafCount(), len(t.LeafValues), 1)
	}
	return nil
}

// Predict returns the raw approximation of every row of features: the sum
// over trees of the value of the leaf the row falls into.
func (m *Model) Predict(features mat.Matrix) (predictions []float64, err error) {
	defer diErrors.Recover(&err, "Model.Predict")

	router, err := NewRouter(m, features)
	if err != nil {
		return nil, err
	}
	predictions = make([]float64, router.DocCount())
	for treeID, tree := range m.Trees {
		if len(tree.LeafValues) == 0 {
			return nil, diErrors.NewValueError("Model.Predict", fmt.Sprintf("tree %d has no leaf values", treeID))
		}
		for doc, leaf := range router.LeafIndices(treeID) {
			predictions[doc] += tree.LeafValues[leaf]
		}
	}
	return predictions, nil
}
