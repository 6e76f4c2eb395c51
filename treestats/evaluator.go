package treestats

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/docimportance/core/model"
	"github.com/ezoic/docimportance/core/pool"
	"github.com/ezoic/docimportance/loss"
	diErrors "github.com/ezoic/docimportance/pkg/errors"
	"github.com/ezoic/docimportance/pkg/log"
)

// LeafRouter returns the leaf of every document in a tree.
type LeafRouter interface {
	LeafIndices(treeID int) []int
}

// DerivativeOracle fills ders with the loss derivatives at approx. ders
// arrives with buffers of len(approx); Third is nil when third-order
// derivatives are not needed.
type DerivativeOracle func(approx []float64, ders *loss.Derivatives) error

// Config holds the leaf estimation hyperparameters being replayed.
// LearningRate and L2LeafReg are used at float32 precision.
type Config struct {
	Method       model.LeafEstimationMethod
	Iterations   int
	LearningRate float64
	L2LeafReg    float64
}

// singlePrecision rounds the learning rate and the L2 regularizer through
// float32, the precision they are stored with at training time. Arithmetic
// stays in float64.
func (c Config) singlePrecision() Config {
	c.LearningRate = float64(float32(c.LearningRate))
	c.L2LeafReg = float64(float32(c.L2LeafReg))
	return c
}

// roundWeights returns a float32-rounded copy of weights; nil stays nil.
func roundWeights(weights []float64) []float64 {
	if weights == nil {
		return nil
	}
	rounded := make([]float64, len(weights))
	for i, w := range weights {
		rounded[i] = float64(float32(w))
	}
	return rounded
}

// Input is what the orchestrator consumes once the model and the pool have
// been resolved into their collaborators.
type Input struct {
	Config    Config
	TreeSizes []int // depth of each tree, in model order
	DocCount  int
	Weights   []float64 // nil for uniform weights; used at float32 precision
	Router    LeafRouter
	Oracle    DerivativeOracle
	// Loss, when set, reports the loss of the running approximation in
	// progress logs.
	Loss func(approx []float64) (float64, error)
}

// Evaluator replays the leaf estimation of every tree of an ensemble and
// records the statistics consumed by document importance.
type Evaluator struct {
	logger  log.Logger
	metrics *Metrics
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the progress logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// NewEvaluator creates an Evaluator. Without options it logs through the
// "treestats.evaluator" logger and records no metrics.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName("treestats.evaluator")
	}
	return e
}

// EvaluateTreeStatistics replays leaf estimation for every tree of m on the
// documents of p and returns one record per tree, in model order.
//
// Configuration errors (unknown loss or leaf estimation method) and shape
// mismatches abort the evaluation before any record is returned. A zero leaf
// denominator is not an error: the affected leaf values are NaN or infinite,
// reported by TreeStatistics.NonFiniteLeaves, and they propagate into the
// approximations of later trees.
//
// ctx is checked before each tree; once it is done the evaluation stops and
// returns ctx.Err() wrapped, without partial results.
func (e *Evaluator) EvaluateTreeStatistics(ctx context.Context, m *model.Model, p *pool.Pool) (stats []TreeStatistics, err error) {
	defer diErrors.Recover(&err, "Evaluator.EvaluateTreeStatistics")

	if err := m.Params.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	router, err := model.NewRouter(m, p.Features)
	if err != nil {
		return nil, err
	}

	lossFunction := m.Params.Loss
	treeSizes := make([]int, m.TreeCount())
	for i := range treeSizes {
		treeSizes[i] = m.TreeSize(i)
	}

	in := Input{
		Config: Config{
			Method:       m.Params.LeafEstimationMethod,
			Iterations:   m.Params.LeafEstimationIterations,
			LearningRate: m.Params.LearningRate,
			L2LeafReg:    m.Params.L2LeafReg,
		},
		TreeSizes: treeSizes,
		DocCount:  p.DocCount(),
		Weights:   p.Weights,
		Router:    router,
		Oracle: func(approx []float64, ders *loss.Derivatives) error {
			return loss.EvaluateInto(lossFunction, approx, p.Target, ders)
		},
		Loss: func(approx []float64) (float64, error) {
			return loss.Mean(lossFunction, approx, p.Target, p.Weights)
		},
	}
	e.logger.Info("Evaluating tree statistics",
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseSetup,
		log.TreesKey, len(treeSizes),
		log.DocsKey, p.DocCount(),
		log.MethodKey, string(in.Config.Method),
		log.LossKey, lossFunction.String(),
	)
	return e.Evaluate(ctx, in)
}

// Evaluate is EvaluateTreeStatistics over already resolved collaborators.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (stats []TreeStatistics, err error) {
	defer func() { e.metrics.recordEvaluation(string(in.Config.Method), err) }()
	defer diErrors.Recover(&err, "Evaluator.Evaluate")

	strategy, err := NewStrategy(in.Config.Method)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.Config = in.Config.singlePrecision()
	in.Weights = roundWeights(in.Weights)

	n := in.DocCount
	approx := make([]float64, n)
	local := make([]float64, n)
	ders := loss.Derivatives{
		First:  make([]float64, n),
		Second: make([]float64, n),
	}
	if strategy.Method() == model.Newton {
		ders.Third = make([]float64, n)
	}

	treeCount := len(in.TreeSizes)
	stats = make([]TreeStatistics, 0, treeCount)
	start := time.Now()
	for treeID, treeSize := range in.TreeSizes {
		if err := ctx.Err(); err != nil {
			return nil, diErrors.Wrapf(err, "evaluation stopped before tree %d", treeID)
		}

		treeStart := time.Now()
		ts, err := e.evaluateTree(strategy, in, treeID, treeSize, approx, local, &ders)
		if err != nil {
			return nil, diErrors.Wrapf(err, "tree %d", treeID)
		}
		stats = append(stats, ts)

		e.reportTree(in, treeID, treeCount, &ts, approx, time.Since(treeStart), time.Since(start))
	}

	e.logger.Info("Tree statistics evaluated",
		log.PhaseKey, log.PhaseEvaluation,
		log.TreesKey, treeCount,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return stats, nil
}

func (in *Input) validate() error {
	const op = "Evaluator.Evaluate"
	if in.DocCount <= 0 {
		return diErrors.NewModelError(op, "no documents", diErrors.ErrEmptyData)
	}
	if in.Weights != nil && len(in.Weights) != in.DocCount {
		return diErrors.NewDimensionError(op, in.DocCount, len(in.Weights), 0)
	}
	if in.Config.Iterations < 1 {
		return diErrors.NewValidationError("leaf_estimation_iterations", "must be at least 1", in.Config.Iterations)
	}
	if in.Config.LearningRate < 0 {
		return diErrors.NewValidationError("learning_rate", "must be non-negative", in.Config.LearningRate)
	}
	if in.Config.L2LeafReg < 0 {
		return diErrors.NewValidationError("l2_leaf_reg", "must be non-negative", in.Config.L2LeafReg)
	}
	for treeID, size := range in.TreeSizes {
		if size < 0 || size > model.MaxTreeDepth {
			return diErrors.NewValidationError(fmt.Sprintf("tree %d depth", treeID), "out of range", size)
		}
	}
	if in.Router == nil || in.Oracle == nil {
		return diErrors.NewValueError(op, "router and derivative oracle are required")
	}
	return nil
}

// evaluateTree replays the leaf estimation iterations of one tree on a copy
// of approx, then adds the tree's learning-rate-scaled leaf values to approx.
func (e *Evaluator) evaluateTree(
	strategy Strategy,
	in Input,
	treeID, treeSize int,
	approx, local []float64,
	ders *loss.Derivatives,
) (TreeStatistics, error) {
	const op = "Evaluator.evaluateTree"
	n := in.DocCount
	leafCount := 1 << treeSize

	leafIndices := in.Router.LeafIndices(treeID)
	if len(leafIndices) != n {
		return TreeStatistics{}, diErrors.NewDimensionError(op, n, len(leafIndices), 0)
	}
	leavesDocIDs := make([][]int, leafCount)
	for doc, leaf := range leafIndices {
		if leaf < 0 || leaf >= leafCount {
			return TreeStatistics{}, diErrors.NewValueError(op,
				fmt.Sprintf("document %d routed to leaf %d outside [0, %d)", doc, leaf, leafCount))
		}
		leavesDocIDs[leaf] = append(leavesDocIDs[leaf], doc)
	}

	iterations := in.Config.Iterations
	ts := TreeStatistics{
		LeafCount:                  leafCount,
		LeafIndices:                leafIndices,
		LeavesDocIDs:               leavesDocIDs,
		LeafValues:                 make([][]float64, iterations),
		FormulaDenominators:        make([][]float64, iterations),
		FormulaNumeratorAdding:     make([][]float64, iterations),
		FormulaNumeratorMultiplier: make([][]float64, iterations),
	}

	copy(local, approx)
	state := &IterationState{LeafCount: leafCount, LeafIndices: leafIndices}
	for it := 0; it < iterations; it++ {
		if err := in.Oracle(local, ders); err != nil {
			return TreeStatistics{}, diErrors.Wrapf(err, "derivatives at iteration %d", it)
		}
		if err := checkDerivatives(ders, n, strategy.Method() == model.Newton); err != nil {
			return TreeStatistics{}, err
		}
		state.Derivatives = *ders

		numerators := strategy.ComputeLeafNumerators(state, in.Weights)
		denominators := strategy.ComputeLeafDenominators(state, in.Weights, in.Config.L2LeafReg)
		leafValues := make([]float64, leafCount)
		for leaf := range leafValues {
			leafValues[leaf] = -numerators[leaf] / denominators[leaf]
		}
		state.LeafValues = leafValues

		ts.FormulaNumeratorAdding[it] = strategy.ComputeFormulaNumeratorAdding(state)
		ts.FormulaNumeratorMultiplier[it] = strategy.ComputeFormulaNumeratorMultiplier(state, in.Weights)
		ts.FormulaDenominators[it] = denominators

		for doc, leaf := range leafIndices {
			local[doc] += leafValues[leaf]
		}
		ts.LeafValues[it] = leafValues
	}

	for _, leafValues := range ts.LeafValues {
		floats.Scale(in.Config.LearningRate, leafValues)
		for doc, leaf := range leafIndices {
			approx[doc] += leafValues[leaf]
		}
	}
	return ts, nil
}

func checkDerivatives(ders *loss.Derivatives, n int, withThird bool) error {
	const op = "Evaluator.evaluateTree"
	if len(ders.First) != n {
		return diErrors.NewDimensionError(op, n, len(ders.First), 0)
	}
	if len(ders.Second) != n {
		return diErrors.NewDimensionError(op, n, len(ders.Second), 0)
	}
	if withThird && len(ders.Third) != n {
		return diErrors.NewDimensionError(op, n, len(ders.Third), 0)
	}
	return nil
}

func (e *Evaluator) reportTree(in Input, treeID, treeCount int, ts *TreeStatistics, approx []float64, treeElapsed, totalElapsed time.Duration) {
	nonFinite := ts.NonFiniteLeaves()
	if e.metrics != nil {
		e.metrics.TreesProcessed.Inc()
		e.metrics.TreeDurationSeconds.Observe(treeElapsed.Seconds())
		e.metrics.NonFiniteLeaves.Add(float64(len(nonFinite)))
	}
	if len(nonFinite) > 0 {
		e.logger.Warn("Non-finite leaf values",
			log.TreeIDKey, treeID,
			log.LeafCountKey, ts.LeafCount,
			"nonfinite", len(nonFinite),
			log.IterationKey, nonFinite[0].Iteration,
			"first_leaf", nonFinite[0].Leaf,
		)
	}

	processed := treeID + 1
	eta := time.Duration(float64(totalElapsed) / float64(processed) * float64(treeCount-processed))
	fields := []interface{}{
		log.TreeIDKey, treeID,
		"processed", fmt.Sprintf("%d/%d", processed, treeCount),
		log.DurationMsKey, treeElapsed.Milliseconds(),
		"eta", eta,
	}
	if in.Loss != nil {
		if value, err := in.Loss(approx); err == nil {
			fields = append(fields, log.LossKey, value)
		}
	}
	e.logger.Debug("Trees processed", fields...)
}
