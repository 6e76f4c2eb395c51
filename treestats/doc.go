// Package treestats replays the leaf estimation of a trained oblivious-tree
// ensemble and records, for every tree, the intermediate quantities needed to
// estimate how much each training document contributed to the model.
//
// For each tree the evaluator starts from the approximation accumulated by the
// preceding trees, runs the configured number of leaf estimation iterations
// with either the Gradient or the Newton formulas, and keeps per iteration:
//
//   - the leaf values and leaf denominators,
//   - an additive and a multiplicative term for every document.
//
// Basic usage:
//
//	m, _ := model.LoadFromFile("model.json")
//	p, _ := pool.LoadCSVFile("train.csv", pool.DefaultCSVOptions())
//
//	stats, err := treestats.NewEvaluator().EvaluateTreeStatistics(ctx, m, p)
//	if err != nil {
//		return err
//	}
//	for treeID, ts := range stats {
//		fmt.Println(treeID, ts.LeafValues[ts.Iterations()-1])
//	}
package treestats
