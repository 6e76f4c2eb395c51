package model

import (
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/ezoic/docimportance/loss"
	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// LeafEstimationMethod selects how leaf values were fitted during training.
type LeafEstimationMethod string

const (
	// Gradient fits leaves with first derivatives normalized by document count.
	Gradient LeafEstimationMethod = "Gradient"
	// Newton fits leaves with first derivatives normalized by curvature.
	Newton LeafEstimationMethod = "Newton"
)

// ParseLeafEstimationMethod resolves a leaf estimation identifier. Matching
// is exact: "newton" is not a method.
func ParseLeafEstimationMethod(s string) (LeafEstimationMethod, error) {
	switch LeafEstimationMethod(s) {
	case Gradient:
		return Gradient, nil
	case Newton:
		return Newton, nil
	}
	return "", diErrors.NewModelError("model.ParseLeafEstimationMethod",
		"leaf_estimation_method \""+s+"\"", diErrors.ErrUnknownLeafEstimation)
}

// Params are the training hyperparameters needed to replay leaf estimation.
type Params struct {
	Loss                     loss.Function        `json:"loss_function"`
	LeafEstimationMethod     LeafEstimationMethod `json:"leaf_estimation_method"`
	LeafEstimationIterations int                  `json:"leaf_estimation_iterations"`
	LearningRate             float64              `json:"learning_rate"`
	L2LeafReg                float64              `json:"l2_leaf_reg"`
}

// Validate checks that every hyperparameter is inside its domain.
func (p Params) Validate() error {
	if err := p.Loss.Validate(); err != nil {
		return err
	}
	if _, err := ParseLeafEstimationMethod(string(p.LeafEstimationMethod)); err != nil {
		return err
	}
	if p.LeafEstimationIterations < 1 {
		return diErrors.NewValidationError("leaf_estimation_iterations", "must be at least 1", p.LeafEstimationIterations)
	}
	if p.LearningRate < 0 {
		return diErrors.NewValidationError("learning_rate", "must be non-negative", p.LearningRate)
	}
	if p.L2LeafReg < 0 {
		return diErrors.NewValidationError("l2_leaf_reg", "must be non-negative", p.L2LeafReg)
	}
	return nil
}

// ParseParams reads the training parameter blob stored with a model. The
// blob is a JSON object, or a JSON string holding an encoded object:
//
//	{
//	  "loss_function": {"type": "Quantile", "params": {"alpha": "0.3"}},
//	  "boosting_options": {"learning_rate": 0.03},
//	  "tree_learner_options": {
//	    "leaf_estimation_method": "Newton",
//	    "leaf_estimation_iterations": 10,
//	    "l2_leaf_reg": 3
//	  }
//	}
//
// loss_function may also be given in its short string form,
// "Quantile:alpha=0.3".
func ParseParams(data []byte) (Params, error) {
	var parser fastjson.Parser
	v, err := parser.ParseBytes(data)
	if err != nil {
		return Params{}, diErrors.NewModelError("model.ParseParams", "malformed params JSON", err)
	}
	if v.Type() == fastjson.TypeString {
		var inner fastjson.Parser
		if v, err = inner.ParseBytes(v.GetStringBytes()); err != nil {
			return Params{}, diErrors.NewModelError("model.ParseParams", "malformed params JSON", err)
		}
	}
	if v.Type() != fastjson.TypeObject {
		return Params{}, diErrors.NewModelError("model.ParseParams", "params must be a JSON object", diErrors.ErrInvalidParams)
	}

	var params Params
	if params.Loss, err = parseLossFunction(v.Get("loss_function")); err != nil {
		return Params{}, err
	}

	methodValue := v.Get("tree_learner_options", "leaf_estimation_method")
	if methodValue == nil {
		return Params{}, missingParam("tree_learner_options.leaf_estimation_method")
	}
	if params.LeafEstimationMethod, err = ParseLeafEstimationMethod(string(methodValue.GetStringBytes())); err != nil {
		return Params{}, err
	}

	if params.LeafEstimationIterations, err = intParam(v, "tree_learner_options", "leaf_estimation_iterations"); err != nil {
		return Params{}, err
	}
	if params.LearningRate, err = floatParam(v, "boosting_options", "learning_rate"); err != nil {
		return Params{}, err
	}
	if params.L2LeafReg, err = floatParam(v, "tree_learner_options", "l2_leaf_reg"); err != nil {
		return Params{}, err
	}

	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}

func parseLossFunction(v *fastjson.Value) (loss.Function, error) {
	if v == nil {
		return loss.Function{}, missingParam("loss_function")
	}

	var (
		name string
		args = map[string]string{}
	)
	switch v.Type() {
	case fastjson.TypeString:
		text := string(v.GetStringBytes())
		name = text
		if i := strings.IndexByte(text, ':'); i >= 0 {
			name = text[:i]
			for _, kv := range strings.Split(text[i+1:], ";") {
				if k, val, ok := strings.Cut(kv, "="); ok {
					args[strings.TrimSpace(k)] = strings.TrimSpace(val)
				}
			}
		}
	case fastjson.TypeObject:
		name = string(v.GetStringBytes("type"))
		if p := v.GetObject("params"); p != nil {
			p.Visit(func(key []byte, val *fastjson.Value) {
				if val.Type() == fastjson.TypeString {
					args[string(key)] = string(val.GetStringBytes())
				} else {
					args[string(key)] = val.String()
				}
			})
		}
	default:
		return loss.Function{}, diErrors.NewModelError("model.ParseParams", "loss_function must be a string or an object", diErrors.ErrInvalidParams)
	}

	kind, err := loss.ParseKind(name)
	if err != nil {
		return loss.Function{}, err
	}
	f := loss.NewFunction(kind)
	if raw, ok := args["alpha"]; ok {
		alpha, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return loss.Function{}, diErrors.NewValidationError("loss_function.alpha", "not a number", raw)
		}
		f.Alpha = alpha
	}
	return f, nil
}

func intParam(v *fastjson.Value, path ...string) (int, error) {
	field := v.Get(path...)
	if field == nil {
		return 0, missingParam(strings.Join(path, "."))
	}
	n, err := field.Int()
	if err != nil {
		return 0, diErrors.NewValidationError(strings.Join(path, "."), "not an integer", field.String())
	}
	return n, nil
}

func floatParam(v *fastjson.Value, path ...string) (float64, error) {
	field := v.Get(path...)
	if field == nil {
		return 0, missingParam(strings.Join(path, "."))
	}
	if field.Type() == fastjson.TypeString {
		f, err := strconv.ParseFloat(string(field.GetStringBytes()), 64)
		if err != nil {
			return 0, diErrors.NewValidationError(strings.Join(path, "."), "not a number", field.String())
		}
		return f, nil
	}
	f, err := field.Float64()
	if err != nil {
		return 0, diErrors.NewValidationError(strings.Join(path, "."), "not a number", field.String())
	}
	return f, nil
}

func missingParam(path string) error {
	return diErrors.NewModelError("model.ParseParams", "missing "+path, diErrors.ErrInvalidParams)
}
