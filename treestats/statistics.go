package treestats

import (
	"fmt"
	"math"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// TreeStatistics is the replayed leaf estimation of one tree. Per-iteration
// slices are indexed [iteration][leaf] or [iteration][document].
type TreeStatistics struct {
	LeafCount int `json:"leaf_count"`
	// LeafIndices[d] is the leaf document d falls into.
	LeafIndices []int `json:"leaf_indices"`
	// LeavesDocIDs[l] lists the documents of leaf l in increasing order.
	LeavesDocIDs [][]int `json:"leaves_doc_ids"`
	// LeafValues are the fitted leaf values, scaled by the learning rate.
	LeafValues                 [][]float64 `json:"leaf_values"`
	FormulaDenominators        [][]float64 `json:"formula_denominators"`
	FormulaNumeratorAdding     [][]float64 `json:"formula_numerator_adding"`
	FormulaNumeratorMultiplier [][]float64 `json:"formula_numerator_multiplier"`
}

// Iterations returns the number of leaf estimation iterations recorded.
func (ts *TreeStatistics) Iterations() int {
	return len(ts.LeafValues)
}

// LeafRef addresses one leaf value of one iteration.
type LeafRef struct {
	Iteration int
	Leaf      int
}

// NonFiniteLeaves lists the leaf values that are NaN or infinite, which
// happens when a leaf denominator is zero.
func (ts *TreeStatistics) NonFiniteLeaves() []LeafRef {
	var refs []LeafRef
	for it, values := range ts.LeafValues {
		for leaf, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				refs = append(refs, LeafRef{Iteration: it, Leaf: leaf})
			}
		}
	}
	return refs
}

// Validate checks that LeavesDocIDs partitions the documents consistently
// with LeafIndices and that every per-iteration slice has its expected size.
func (ts *TreeStatistics) Validate() error {
	const op = "TreeStatistics.Validate"
	docCount := len(ts.LeafIndices)
	if len(ts.LeavesDocIDs) != ts.LeafCount {
		return diErrors.NewDimensionError(op, ts.LeafCount, len(ts.LeavesDocIDs), 1)
	}

	seen := make([]bool, docCount)
	total := 0
	for leaf, docs := range ts.LeavesDocIDs {
		for _, doc := range docs {
			if doc < 0 || doc >= docCount {
				return diErrors.NewValueError(op, fmt.Sprintf("leaf %d lists unknown document %d", leaf, doc))
			}
			if seen[doc] {
				return diErrors.NewValueError(op, fmt.Sprintf("document %d listed twice", doc))
			}
			if ts.LeafIndices[doc] != leaf {
				return diErrors.NewValueError(op, fmt.Sprintf("document %d listed in leaf %d but assigned to leaf %d", doc, leaf, ts.LeafIndices[doc]))
			}
			seen[doc] = true
			total++
		}
	}
	if total != docCount {
		return diErrors.NewDimensionError(op, docCount, total, 0)
	}

	iterations := len(ts.LeafValues)
	for _, perIteration := range [][][]float64{ts.FormulaDenominators, ts.FormulaNumeratorAdding, ts.FormulaNumeratorMultiplier} {
		if len(perIteration) != iterations {
			return diErrors.NewDimensionError(op, iterations, len(perIteration), 0)
		}
	}
	for it := 0; it < iterations; it++ {
		if len(ts.LeafValues[it]) != ts.LeafCount {
			return diErrors.NewDimensionError(op, ts.LeafCount, len(ts.LeafValues[it]), 1)
		}
		if len(ts.FormulaDenominators[it]) != ts.LeafCount {
			return diErrors.NewDimensionError(op, ts.LeafCount, len(ts.FormulaDenominators[it]), 1)
		}
		if len(ts.FormulaNumeratorAdding[it]) != docCount {
			return diErrors.NewDimensionError(op, docCount, len(ts.FormulaNumeratorAdding[it]), 0)
		}
		if len(ts.FormulaNumeratorMultiplier[it]) != docCount {
			return diErrors.NewDimensionError(op, docCount, len(ts.FormulaNumeratorMultiplier[it]), 0)
		}
	}
	return nil
}
