// Package loss implements the derivative oracle used to replay leaf
// estimation: for a loss function and a vector of current approximations it
// returns the first, second and third derivatives of the loss with respect to
// each approximation.
//
// Derivatives are those of the loss being minimized, so a positive first
// derivative means the approximation is too large:
//
//	RMSE:                 d1 = a - t            d2 = 1          d3 = 0
//	Logloss/CrossEntropy: d1 = p - t            d2 = p(1-p)     d3 = p(1-p)(1-2p)
//	Quantile, MAE:        d1 = t > a ? -α : 1-α d2 = 0          d3 = 0
//	LogLinQuantile:       d1 = t > e ? -αe : (1-α)e, e = exp(a)
//	MAPE:                 d1 = ±1 / max(1, |t|)
//	Poisson:              d1 = exp(a) - t       d2 = exp(a)     d3 = exp(a)
package loss

import (
	"strings"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// Kind identifies a loss function.
type Kind string

const (
	RMSE           Kind = "RMSE"
	Logloss        Kind = "Logloss"
	CrossEntropy   Kind = "CrossEntropy"
	Quantile       Kind = "Quantile"
	MAE            Kind = "MAE"
	LogLinQuantile Kind = "LogLinQuantile"
	MAPE           Kind = "MAPE"
	Poisson        Kind = "Poisson"
)

var kinds = []Kind{RMSE, Logloss, CrossEntropy, Quantile, MAE, LogLinQuantile, MAPE, Poisson}

// ParseKind resolves a loss identifier. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", diErrors.NewModelError("loss.ParseKind", "loss_function \""+s+"\"", diErrors.ErrUnknownLoss)
}

// DefaultAlpha is the quantile level used when none is given.
const DefaultAlpha = 0.5

// Function is a loss kind together with its parameters.
type Function struct {
	Kind  Kind
	Alpha float64 // Quantile and LogLinQuantile only
}

// NewFunction returns a Function with default parameters for kind.
func NewFunction(kind Kind) Function {
	f := Function{Kind: kind}
	if kind.hasAlpha() {
		f.Alpha = DefaultAlpha
	}
	return f
}

func (k Kind) hasAlpha() bool {
	return k == Quantile || k == LogLinQuantile
}

// Validate checks the parameters of f.
func (f Function) Validate() error {
	if _, err := ParseKind(string(f.Kind)); err != nil {
		return err
	}
	if f.Kind.hasAlpha() && (f.Alpha <= 0 || f.Alpha >= 1) {
		return diErrors.NewValidationError("alpha", "must be in (0, 1)", f.Alpha)
	}
	return nil
}

func (f Function) String() string {
	return string(f.Kind)
}
