package loss

import (
	"math"

	"gonum.org/v1/gonum/floats"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// Mean returns the weighted mean loss of approx against target. RMSE reports
// the root of the mean squared error. A nil weights slice means uniform
// weights.
//
// Errors:
//   - ErrEmptyData: if approx is empty or the weights sum to zero
//   - ErrDimensionMismatch: if target or weights differ in length from approx
func Mean(f Function, approx, target, weights []float64) (float64, error) {
	n := len(approx)
	if n == 0 {
		return 0, diErrors.NewModelError("loss.Mean", "empty approximation vector", diErrors.ErrEmptyData)
	}
	if len(target) != n {
		return 0, diErrors.NewDimensionError("loss.Mean", n, len(target), 0)
	}
	if weights != nil && len(weights) != n {
		return 0, diErrors.NewDimensionError("loss.Mean", n, len(weights), 0)
	}

	point, err := pointLoss(f)
	if err != nil {
		return 0, err
	}

	var sum, weightSum float64
	for i := 0; i < n; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		sum += w * point(approx[i], target[i])
	}
	if weights == nil {
		weightSum = float64(n)
	} else {
		weightSum = floats.Sum(weights)
	}
	if weightSum == 0 {
		return 0, diErrors.NewModelError("loss.Mean", "weights sum to zero", diErrors.ErrEmptyData)
	}

	mean := sum / weightSum
	if f.Kind == RMSE {
		return math.Sqrt(mean), nil
	}
	return mean, nil
}

func pointLoss(f Function) (func(a, t float64) float64, error) {
	switch f.Kind {
	case RMSE:
		return func(a, t float64) float64 { return (a - t) * (a - t) }, nil
	case Logloss, CrossEntropy:
		return func(a, t float64) float64 {
			// log(1 + exp(a)) - t*a, stable for large |a|
			return softplus(a) - t*a
		}, nil
	case Quantile, MAE:
		alpha := f.Alpha
		if f.Kind == MAE {
			alpha = 0.5
		}
		return func(a, t float64) float64 {
			if t > a {
				return alpha * (t - a)
			}
			return (1 - alpha) * (a - t)
		}, nil
	case LogLinQuantile:
		alpha := f.Alpha
		return func(a, t float64) float64 {
			e := math.Exp(a)
			if t > e {
				return alpha * (t - e)
			}
			return (1 - alpha) * (e - t)
		}, nil
	case MAPE:
		return func(a, t float64) float64 {
			return math.Abs(t-a) / math.Max(1, math.Abs(t))
		}, nil
	case Poisson:
		return func(a, t float64) float64 { return math.Exp(a) - t*a }, nil
	}
	return nil, diErrors.NewModelError("loss.Mean", "loss_function \""+string(f.Kind)+"\"", diErrors.ErrUnknownLoss)
}

func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}
