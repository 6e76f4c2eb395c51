package loss

import (
	"math"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// Derivatives holds per-document derivatives of the loss. Third is nil unless
// third-order derivatives were requested.
type Derivatives struct {
	First  []float64
	Second []float64
	Third  []float64
}

// Evaluate computes derivatives of f at approx against target. Third-order
// derivatives are computed only when withThird is set (Newton leaf
// estimation needs them, gradient descent does not).
func Evaluate(f Function, approx, target []float64, withThird bool) (Derivatives, error) {
	if len(target) != len(approx) {
		return Derivatives{}, diErrors.NewDimensionError("loss.Evaluate", len(approx), len(target), 0)
	}
	ders := Derivatives{
		First:  make([]float64, len(approx)),
		Second: make([]float64, len(approx)),
	}
	if withThird {
		ders.Third = make([]float64, len(approx))
	}
	if err := EvaluateInto(f, approx, target, &ders); err != nil {
		return Derivatives{}, err
	}
	return ders, nil
}

// EvaluateInto is Evaluate writing into preallocated buffers. ders.Third may
// be nil to skip third-order derivatives.
func EvaluateInto(f Function, approx, target []float64, ders *Derivatives) error {
	n := len(approx)
	if len(target) != n {
		return diErrors.NewDimensionError("loss.Evaluate", n, len(target), 0)
	}
	if len(ders.First) != n {
		return diErrors.NewDimensionError("loss.Evaluate", n, len(ders.First), 0)
	}
	if len(ders.Second) != n {
		return diErrors.NewDimensionError("loss.Evaluate", n, len(ders.Second), 0)
	}
	withThird := ders.Third != nil
	if withThird && len(ders.Third) != n {
		return diErrors.NewDimensionError("loss.Evaluate", n, len(ders.Third), 0)
	}

	var der func(a, t float64) (d1, d2, d3 float64)
	switch f.Kind {
	case RMSE:
		der = func(a, t float64) (float64, float64, float64) {
			return a - t, 1, 0
		}
	case Logloss, CrossEntropy:
		der = func(a, t float64) (float64, float64, float64) {
			p := sigmoid(a)
			d2 := p * (1 - p)
			return p - t, d2, d2 * (1 - 2*p)
		}
	case Quantile, MAE:
		alpha := f.Alpha
		if f.Kind == MAE {
			alpha = 0.5
		}
		der = func(a, t float64) (float64, float64, float64) {
			if t-a > 0 {
				return -alpha, 0, 0
			}
			return 1 - alpha, 0, 0
		}
	case LogLinQuantile:
		alpha := f.Alpha
		der = func(a, t float64) (float64, float64, float64) {
			e := math.Exp(a)
			if t-e > 0 {
				return -alpha * e, 0, 0
			}
			return (1 - alpha) * e, 0, 0
		}
	case MAPE:
		der = func(a, t float64) (float64, float64, float64) {
			scale := math.Max(1, math.Abs(t))
			if t-a > 0 {
				return -1 / scale, 0, 0
			}
			return 1 / scale, 0, 0
		}
	case Poisson:
		der = func(a, t float64) (float64, float64, float64) {
			e := math.Exp(a)
			return e - t, e, e
		}
	default:
		return diErrors.NewModelError("loss.Evaluate", "loss_function \""+string(f.Kind)+"\"", diErrors.ErrUnknownLoss)
	}

	for i := 0; i < n; i++ {
		d1, d2, d3 := der(approx[i], target[i])
		ders.First[i] = d1
		ders.Second[i] = d2
		if withThird {
			ders.Third[i] = d3
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
