// Package pool holds the documents an ensemble is evaluated on: a feature
// matrix with one row per document, the training targets, and optional
// non-negative document weights.
package pool

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// Pool is an ordered set of documents. A nil Weights slice means every
// document has weight 1.
type Pool struct {
	Features *mat.Dense
	Target   []float64
	Weights  []float64
}

// New builds a pool and validates it.
func New(features *mat.Dense, target, weights []float64) (*Pool, error) {
	p := &Pool{Features: features, Target: target, Weights: weights}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DocCount returns the number of documents.
func (p *Pool) DocCount() int {
	return len(p.Target)
}

// HasWeights reports whether per-document weights are present.
func (p *Pool) HasWeights() bool {
	return p.Weights != nil
}

// Validate checks that the pool is non-empty, that every per-document
// sequence has one entry per document and that weights are finite and
// non-negative.
func (p *Pool) Validate() error {
	n := len(p.Target)
	if n == 0 {
		return diErrors.NewModelError("pool.Validate", "no documents", diErrors.ErrEmptyData)
	}
	if p.Features == nil {
		return diErrors.NewModelError("pool.Validate", "no features", diErrors.ErrEmptyData)
	}
	if rows, _ := p.Features.Dims(); rows != n {
		return diErrors.NewDimensionError("pool.Validate", n, rows, 0)
	}
	if p.Weights != nil {
		if len(p.Weights) != n {
			return diErrors.NewDimensionError("pool.Validate", n, len(p.Weights), 0)
		}
		for i, w := range p.Weights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return diErrors.NewValueError("pool.Validate", fmt.Sprintf("weight of document %d is %v", i, w))
			}
		}
	}
	for i, t := range p.Target {
		if math.IsNaN(t) {
			return diErrors.NewValueError("pool.Validate", fmt.Sprintf("target of document %d is NaN", i))
		}
	}
	return nil
}
