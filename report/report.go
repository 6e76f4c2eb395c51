// Package report writes tree statistics for downstream consumers: a JSON
// document for document-importance tooling and a leaf value plot for
// inspection.
package report

import (
	"io"
	"math"

	"github.com/valyala/fastjson"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
	"github.com/ezoic/docimportance/treestats"
)

// WriteJSON writes stats as {"trees": [...]}, one object per tree in model
// order. NaN and infinite numbers are written as the strings "NaN", "+Inf"
// and "-Inf" since JSON has no literal for them.
func WriteJSON(w io.Writer, stats []treestats.TreeStatistics) error {
	var a fastjson.Arena
	trees := a.NewArray()
	for treeID := range stats {
		ts := &stats[treeID]
		tree := a.NewObject()
		tree.Set("tree_id", a.NewNumberInt(treeID))
		tree.Set("leaf_count", a.NewNumberInt(ts.LeafCount))
		tree.Set("leaf_indices", intArray(&a, ts.LeafIndices))

		docIDs := a.NewArray()
		for leaf, docs := range ts.LeavesDocIDs {
			docIDs.SetArrayItem(leaf, intArray(&a, docs))
		}
		tree.Set("leaves_doc_ids", docIDs)
		tree.Set("leaf_values", floatMatrix(&a, ts.LeafValues))
		tree.Set("formula_denominators", floatMatrix(&a, ts.FormulaDenominators))
		tree.Set("formula_numerator_adding", floatMatrix(&a, ts.FormulaNumeratorAdding))
		tree.Set("formula_numerator_multiplier", floatMatrix(&a, ts.FormulaNumeratorMultiplier))
		trees.SetArrayItem(treeID, tree)
	}

	doc := a.NewObject()
	doc.Set("trees", trees)
	buf := doc.MarshalTo(nil)
	buf = append(buf, '\n')
	if _, err := w.Write(buf); err != nil {
		return diErrors.Wrap(err, "write tree statistics")
	}
	return nil
}

func intArray(a *fastjson.Arena, values []int) *fastjson.Value {
	arr := a.NewArray()
	for i, v := range values {
		arr.SetArrayItem(i, a.NewNumberInt(v))
	}
	return arr
}

func floatMatrix(a *fastjson.Arena, rows [][]float64) *fastjson.Value {
	arr := a.NewArray()
	for i, row := range rows {
		values := a.NewArray()
		for j, v := range row {
			values.SetArrayItem(j, floatValue(a, v))
		}
		arr.SetArrayItem(i, values)
	}
	return arr
}

func floatValue(a *fastjson.Arena, v float64) *fastjson.Value {
	switch {
	case math.IsNaN(v):
		return a.NewString("NaN")
	case math.IsInf(v, 1):
		return a.NewString("+Inf")
	case math.IsInf(v, -1):
		return a.NewString("-Inf")
	}
	return a.NewNumberFloat64(v)
}
