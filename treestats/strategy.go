package treestats

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/docimportance/core/model"
	"github.com/ezoic/docimportance/loss"
	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// IterationState is the input shared by the four formulas of a leaf
// estimation iteration. LeafValues is only read by the per-document formulas
// and must be set once the leaf values of the iteration are known.
type IterationState struct {
	LeafCount   int
	LeafIndices []int
	Derivatives loss.Derivatives
	LeafValues  []float64
}

// Strategy computes the leaf and per-document statistics of one leaf
// estimation method. A nil weights slice means every document has weight 1.
//
// The only implementations are GradientStrategy and NewtonStrategy.
type Strategy interface {
	Method() model.LeafEstimationMethod

	// ComputeLeafNumerators returns Σ weight·d1 over the documents of each leaf.
	ComputeLeafNumerators(s *IterationState, weights []float64) []float64
	// ComputeLeafDenominators returns the regularized normalizer of each leaf.
	ComputeLeafDenominators(s *IterationState, weights []float64, l2LeafReg float64) []float64
	// ComputeFormulaNumeratorAdding returns one additive term per document.
	ComputeFormulaNumeratorAdding(s *IterationState) []float64
	// ComputeFormulaNumeratorMultiplier returns one multiplicative term per document.
	ComputeFormulaNumeratorMultiplier(s *IterationState, weights []float64) []float64

	sealed()
}

// NewStrategy returns the strategy for method.
func NewStrategy(method model.LeafEstimationMethod) (Strategy, error) {
	switch method {
	case model.Gradient:
		return GradientStrategy{}, nil
	case model.Newton:
		return NewtonStrategy{}, nil
	}
	return nil, diErrors.NewModelError("treestats.NewStrategy",
		"leaf_estimation_method \""+string(method)+"\"", diErrors.ErrUnknownLeafEstimation)
}

// GradientStrategy replays gradient-descent leaf estimation: the leaf
// denominator is the (weighted) number of documents in the leaf.
type GradientStrategy struct{}

func (GradientStrategy) sealed() {}

// Method returns model.Gradient.
func (GradientStrategy) Method() model.LeafEstimationMethod { return model.Gradient }

func (GradientStrategy) ComputeLeafNumerators(s *IterationState, weights []float64) []float64 {
	return sumByLeaf(s, s.Derivatives.First, weights)
}

func (GradientStrategy) ComputeLeafDenominators(s *IterationState, weights []float64, l2LeafReg float64) []float64 {
	denominators := make([]float64, s.LeafCount)
	if weights == nil {
		for _, leaf := range s.LeafIndices {
			denominators[leaf]++
		}
	} else {
		for doc, leaf := range s.LeafIndices {
			denominators[leaf] += weights[doc]
		}
	}
	floats.AddConst(l2LeafReg, denominators)
	return denominators
}

// ComputeFormulaNumeratorAdding returns leafValue[leaf(d)] + d1[d].
func (GradientStrategy) ComputeFormulaNumeratorAdding(s *IterationState) []float64 {
	adding := make([]float64, len(s.LeafIndices))
	for doc, leaf := range s.LeafIndices {
		adding[doc] = s.LeafValues[leaf] + s.Derivatives.First[doc]
	}
	return adding
}

// ComputeFormulaNumeratorMultiplier returns weight[d]·d2[d].
func (GradientStrategy) ComputeFormulaNumeratorMultiplier(s *IterationState, weights []float64) []float64 {
	multiplier := make([]float64, len(s.LeafIndices))
	if weights == nil {
		copy(multiplier, s.Derivatives.Second)
		return multiplier
	}
	floats.MulTo(multiplier, weights, s.Derivatives.Second)
	return multiplier
}

// NewtonStrategy replays Newton leaf estimation: the leaf denominator is the
// (weighted) sum of second derivatives in the leaf.
type NewtonStrategy struct{}

func (NewtonStrategy) sealed() {}

// Method returns model.Newton.
func (NewtonStrategy) Method() model.LeafEstimationMethod { return model.Newton }

func (NewtonStrategy) ComputeLeafNumerators(s *IterationState, weights []float64) []float64 {
	return sumByLeaf(s, s.Derivatives.First, weights)
}

func (NewtonStrategy) ComputeLeafDenominators(s *IterationState, weights []float64, l2LeafReg float64) []float64 {
	denominators := sumByLeaf(s, s.Derivatives.Second, weights)
	floats.AddConst(l2LeafReg, denominators)
	return denominators
}

// ComputeFormulaNumeratorAdding returns leafValue[leaf(d)]·d2[d] + d1[d].
func (NewtonStrategy) ComputeFormulaNumeratorAdding(s *IterationState) []float64 {
	adding := make([]float64, len(s.LeafIndices))
	for doc, leaf := range s.LeafIndices {
		adding[doc] = s.LeafValues[leaf]*s.Derivatives.Second[doc] + s.Derivatives.First[doc]
	}
	return adding
}

// ComputeFormulaNumeratorMultiplier returns
// weight[d]·(leafValue[leaf(d)]·d3[d] + d2[d]).
func (NewtonStrategy) ComputeFormulaNumeratorMultiplier(s *IterationState, weights []float64) []float64 {
	multiplier := make([]float64, len(s.LeafIndices))
	for doc, leaf := range s.LeafIndices {
		multiplier[doc] = s.LeafValues[leaf]*s.Derivatives.Third[doc] + s.Derivatives.Second[doc]
	}
	if weights != nil {
		floats.Mul(multiplier, weights)
	}
	return multiplier
}

// sumByLeaf returns Σ weight[d]·values[d] over the documents of each leaf.
func sumByLeaf(s *IterationState, values, weights []float64) []float64 {
	sums := make([]float64, s.LeafCount)
	if weights == nil {
		for doc, leaf := range s.LeafIndices {
			sums[leaf] += values[doc]
		}
		return sums
	}
	for doc, leaf := range s.LeafIndices {
		sums[leaf] += weights[doc] * values[doc]
	}
	return sums
}
