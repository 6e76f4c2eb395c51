package treestats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/docimportance/core/model"
	"github.com/ezoic/docimportance/loss"
	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

func fourDocState() *IterationState {
	return &IterationState{
		LeafCount:   2,
		LeafIndices: []int{0, 0, 1, 1},
		Derivatives: loss.Derivatives{
			First:  []float64{1, 1, 2, 2},
			Second: []float64{1, 1, 1, 1},
			Third:  []float64{0.5, 0.5, -1, 2},
		},
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy(model.Gradient)
	require.NoError(t, err)
	assert.IsType(t, GradientStrategy{}, s)
	assert.Equal(t, model.Gradient, s.Method())

	s, err = NewStrategy(model.Newton)
	require.NoError(t, err)
	assert.IsType(t, NewtonStrategy{}, s)
	assert.Equal(t, model.Newton, s.Method())

	_, err = NewStrategy("Exact")
	assert.ErrorIs(t, err, diErrors.ErrUnknownLeafEstimation)
}

func TestGradientStrategy(t *testing.T) {
	s := fourDocState()
	g := GradientStrategy{}

	assert.Equal(t, []float64{2, 4}, g.ComputeLeafNumerators(s, nil))
	assert.Equal(t, []float64{2, 2}, g.ComputeLeafDenominators(s, nil, 0))
	assert.Equal(t, []float64{2.5, 2.5}, g.ComputeLeafDenominators(s, nil, 0.5))

	s.LeafValues = []float64{-1, -2}
	assert.Equal(t, []float64{0, 0, 0, 0}, g.ComputeFormulaNumeratorAdding(s))
	assert.Equal(t, []float64{1, 1, 1, 1}, g.ComputeFormulaNumeratorMultiplier(s, nil))

	weights := []float64{2, 0, 1, 3}
	assert.Equal(t, []float64{2, 8}, g.ComputeLeafNumerators(s, weights))
	assert.Equal(t, []float64{3, 5}, g.ComputeLeafDenominators(s, weights, 1))
	assert.Equal(t, []float64{2, 0, 1, 3}, g.ComputeFormulaNumeratorMultiplier(s, weights))
}

func TestGradientMultiplierDoesNotAliasDerivatives(t *testing.T) {
	s := fourDocState()
	multiplier := GradientStrategy{}.ComputeFormulaNumeratorMultiplier(s, nil)
	s.Derivatives.Second[0] = 42
	assert.Equal(t, 1.0, multiplier[0])
}

func TestNewtonStrategy(t *testing.T) {
	s := fourDocState()
	nt := NewtonStrategy{}

	assert.Equal(t, []float64{2, 4}, nt.ComputeLeafNumerators(s, nil))
	assert.Equal(t, []float64{3, 3}, nt.ComputeLeafDenominators(s, nil, 1))

	s.Derivatives.Second = []float64{2, 1, 0.5, 0.5}
	s.LeafValues = []float64{-1, 4}
	assert.Equal(t, []float64{-1, 0, 4, 4}, nt.ComputeFormulaNumeratorAdding(s))
	// leafValue·d3 + d2
	assert.Equal(t, []float64{1.5, 0.5, -3.5, 8.5}, nt.ComputeFormulaNumeratorMultiplier(s, nil))
	assert.Equal(t, []float64{3, 0, -3.5, 25.5}, nt.ComputeFormulaNumeratorMultiplier(s, []float64{2, 0, 1, 3}))
	assert.Equal(t, []float64{4, 1}, nt.ComputeLeafDenominators(s, []float64{2, 0, 1, 1}, 0))
}

func TestNewtonAddingReducesToGradient(t *testing.T) {
	s := fourDocState()
	s.LeafValues = []float64{0.3, -1.7}
	assert.Equal(t,
		GradientStrategy{}.ComputeFormulaNumeratorAdding(s),
		NewtonStrategy{}.ComputeFormulaNumeratorAdding(s))
}

func TestUnitWeightsMatchUnweighted(t *testing.T) {
	ones := []float64{1, 1, 1, 1}
	for _, strategy := range []Strategy{GradientStrategy{}, NewtonStrategy{}} {
		t.Run(string(strategy.Method()), func(t *testing.T) {
			s := fourDocState()
			s.LeafValues = []float64{0.25, -0.5}
			assert.Equal(t, strategy.ComputeLeafNumerators(s, nil), strategy.ComputeLeafNumerators(s, ones))
			assert.Equal(t, strategy.ComputeLeafDenominators(s, nil, 2), strategy.ComputeLeafDenominators(s, ones, 2))
			assert.Equal(t, strategy.ComputeFormulaNumeratorMultiplier(s, nil), strategy.ComputeFormulaNumeratorMultiplier(s, ones))
		})
	}
}

func TestEmptyLeafDenominatorIsRegularizer(t *testing.T) {
	s := &IterationState{
		LeafCount:   4,
		LeafIndices: []int{0, 0, 3},
		Derivatives: loss.Derivatives{
			First:  []float64{1, 2, 3},
			Second: []float64{0.5, 0.5, 0.5},
		},
	}
	assert.InDeltaSlice(t, []float64{2.7, 0.7, 0.7, 1.7}, GradientStrategy{}.ComputeLeafDenominators(s, nil, 0.7), 1e-12)
	assert.InDeltaSlice(t, []float64{1.7, 0.7, 0.7, 1.2}, NewtonStrategy{}.ComputeLeafDenominators(s, nil, 0.7), 1e-12)
	assert.Equal(t, []float64{1, 0, 0, 0.5}, NewtonStrategy{}.ComputeLeafDenominators(s, nil, 0))
}
