package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// Router assigns documents to leaves. Features are binarized once against the
// borders used by the model; each tree then reads its leaf indices from the
// binarized columns.
type Router struct {
	model    *Model
	docCount int
	borders  [][]float64 // sorted unique borders per feature
	bins     [][]uint16  // bins[feature][doc], nil for unused features
}

// NewRouter binarizes features (one row per document) for m.
func NewRouter(m *Model, features mat.Matrix) (*Router, error) {
	rows, cols := features.Dims()
	if m.FeatureCount > 0 && cols < m.FeatureCount {
		return nil, diErrors.NewDimensionError("model.NewRouter", m.FeatureCount, cols, 1)
	}

	r := &Router{model: m, docCount: rows}
	maxFeature := -1
	for _, tree := range m.Trees {
		for _, s := range tree.Splits {
			if s.FeatureIndex > maxFeature {
				maxFeature = s.FeatureIndex
			}
		}
	}
	if maxFeature >= cols {
		return nil, diErrors.NewDimensionError("model.NewRouter", maxFeature+1, cols, 1)
	}

	r.borders = make([][]float64, maxFeature+1)
	for _, tree := range m.Trees {
		for _, s := range tree.Splits {
			r.borders[s.FeatureIndex] = append(r.borders[s.FeatureIndex], s.Border)
		}
	}
	r.bins = make([][]uint16, maxFeature+1)
	for f, borders := range r.borders {
		if len(borders) == 0 {
			continue
		}
		r.borders[f] = uniqueSorted(borders)
		if len(r.borders[f]) > math.MaxUint16 {
			return nil, diErrors.NewValueError("model.NewRouter", "too many borders for one feature")
		}
		r.bins[f] = binarizeColumn(features, f, rows, r.borders[f])
	}
	return r, nil
}

// DocCount returns the number of documents routed.
func (r *Router) DocCount() int {
	return r.docCount
}

// LeafIndices returns the leaf of every document in tree treeID.
func (r *Router) LeafIndices(treeID int) []int {
	tree := r.model.Trees[treeID]
	indices := make([]int, r.docCount)
	for depth, s := range tree.Splits {
		borderBin := uint16(sort.SearchFloat64s(r.borders[s.FeatureIndex], s.Border))
		column := r.bins[s.FeatureIndex]
		bit := 1 << depth
		for doc := 0; doc < r.docCount; doc++ {
			if column[doc] > borderBin {
				indices[doc] |= bit
			}
		}
	}
	return indices
}

// binarizeColumn maps each value to the number of borders strictly below it,
// so value > borders[k] exactly when bin > k. NaN goes to bin 0.
func binarizeColumn(features mat.Matrix, feature, rows int, borders []float64) []uint16 {
	column := make([]uint16, rows)
	for doc := 0; doc < rows; doc++ {
		v := features.At(doc, feature)
		if math.IsNaN(v) {
			continue
		}
		column[doc] = uint16(sort.Search(len(borders), func(i int) bool { return borders[i] >= v }))
	}
	return column
}

func uniqueSorted(values []float64) []float64 {
	sort.Float64s(values)
	out := values[:0]
	for _, v := range values {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
