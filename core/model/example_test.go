package model_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/docimportance/core/model"
)

const exampleModel = `{
  "model_info": {
    "params": {
      "loss_function": {"type": "RMSE"},
      "boosting_options": {"learning_rate": 0.5},
      "tree_learner_options": {
        "leaf_estimation_method": "Gradient",
        "leaf_estimation_iterations": 1,
        "l2_leaf_reg": 0
      }
    }
  },
  "features_count": 2,
  "oblivious_trees": [
    {"splits": [{"float_feature_index": 0, "border": 0.5}], "leaf_values": [-1, 1]},
    {"splits": [{"float_feature_index": 1, "border": 2.5}], "leaf_values": [0.25, 0.5]}
  ]
}`

// ExampleRouter shows how documents are routed to the leaves of each tree.
func ExampleRouter() {
	m, err := model.LoadFromString(exampleModel)
	if err != nil {
		fmt.Println(err)
		return
	}

	features := mat.NewDense(3, 2, []float64{
		0, 3,
		1, 2,
		1, 3,
	})
	router, err := model.NewRouter(m, features)
	if err != nil {
		fmt.Println(err)
		return
	}

	for treeID := 0; treeID < m.TreeCount(); treeID++ {
		fmt.Printf("tree %d: %v\n", treeID, router.LeafIndices(treeID))
	}

	// Output: tree 0: [0 1 1]
	// tree 1: [1 0 1]
}

// ExampleModel_Predict sums the leaf values a document falls into.
func ExampleModel_Predict() {
	m, _ := model.LoadFromString(exampleModel)
	preds, _ := m.Predict(mat.NewDense(2, 2, []float64{
		0, 0,
		1, 3,
	}))
	fmt.Println(preds)

	// Output: [-0.75 1.5]
}
