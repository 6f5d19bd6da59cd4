package model

import (
	"fmt"

	"github.com/citesage/citesage/internal/graphs"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/ml/train/losses"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Hyperparameter names understood on top of the GoMLX ones
// (optimizers.ParamLearningRate, layers.ParamDropoutRate, etc.).
const (
	// ParamHiddenDim is the width of every hidden aggregation layer.
	ParamHiddenDim = "hidden_dim"

	// ParamNumHiddenLayers is the number of hidden aggregation layers; the
	// output layer comes on top, so the receptive field is
	// ParamNumHiddenLayers+1 hops.
	ParamNumHiddenLayers = "num_hidden_layers"

	// ParamAggregator names the neighborhood aggregation policy, see
	// AggregatorFromName.
	ParamAggregator = "aggregator"

	// ParamSeed seeds the dropout random state. Negative means a fresh
	// non-deterministic state.
	ParamSeed = "seed"
)

// Sage implements a GraphSage network for node classification: a stack of
// neighborhood-aggregation layers whose last layer's width is the number of
// classes, so the final embeddings are the class logits.
//
// It implements Model.
type Sage struct {
	ctx                     *context.Context
	numFeatures, numClasses int
}

var _ Model = (*Sage)(nil)

// NewSage creates a Sage model with a fresh context, initialized with
// hyperparameters set to their defaults.
func NewSage(numFeatures, numClasses int) *Sage {
	sage := &Sage{
		ctx:         context.New(),
		numFeatures: numFeatures,
		numClasses:  numClasses,
	}
	sage.ctx.RngStateReset()
	sage.ctx.SetParams(map[string]any{
		ParamHiddenDim:       16,
		ParamNumHiddenLayers: 1,
		ParamAggregator:      AggregatorGCN.String(),
		ParamSeed:            -1,

		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.01,
		optimizers.ParamAdamEpsilon:  1e-7,
		optimizers.ParamAdamDType:    "",
		activations.ParamActivation:  "relu",
		layers.ParamDropoutRate:      0.5,

		// Weight decay, applied to the dense layers' weights.
		regularizers.ParamL2: 5e-4,
		regularizers.ParamL1: 0.0,
	})
	sage.ctx = sage.ctx.Checked(false)
	return sage
}

// Context implements Model.
func (s *Sage) Context() *context.Context {
	return s.ctx
}

// NumClasses returns the width of the network's output layer.
func (s *Sage) NumClasses() int { return s.numClasses }

// aggregator reads and parses the configured aggregation policy.
func (s *Sage) aggregator() (Aggregator, error) {
	return AggregatorFromName(context.GetParamOr(s.ctx, ParamAggregator, AggregatorGCN.String()))
}

// CreateInputs implements Model: the [numNodes, numFeatures] feature table
// and the aggregator's propagation matrix.
func (s *Sage) CreateInputs(ds *graphs.Dataset) ([]*tensors.Tensor, error) {
	store := ds.Store
	if store.FeatureDim() != s.numFeatures {
		return nil, errors.Wrapf(ErrShapeMismatch, "model configured for %d input features, store has %d",
			s.numFeatures, store.FeatureDim())
	}
	numNodes, featureDim := store.NumNodes(), store.FeatureDim()
	features := tensors.FromShape(shapes.Make(dtypes.Float32, numNodes, featureDim))
	tensors.MutableFlatData(features, func(flat []float32) {
		for v := range numNodes {
			row, _ := store.Features(int32(v))
			for j, x := range row {
				flat[v*featureDim+j] = float32(x)
			}
		}
	})

	agg, err := s.aggregator()
	if err != nil {
		return nil, err
	}
	propagation, err := PropagationMatrix(store, agg)
	if err != nil {
		return nil, err
	}
	return []*tensors.Tensor{features, propagation}, nil
}

// ForwardGraph implements Model. It recomputes the full embedding table on
// every call: hidden aggregation layers with dropout and activation, then
// the output aggregation layer producing the logits.
func (s *Sage) ForwardGraph(ctx *context.Context, inputs []*Node) *Node {
	features, propagation := inputs[0], inputs[1]
	numNodes := features.Shape().Dim(0)

	agg, err := s.aggregator()
	if err != nil {
		panic(err) // Validated at Trainer construction.
	}
	numHidden := context.GetParamOr(ctx, ParamNumHiddenLayers, 1)
	hiddenDim := context.GetParamOr(ctx, ParamHiddenDim, 16)

	embeddings := features
	for layerIdx := range numHidden {
		layerCtx := ctx.In(fmt.Sprintf("sage_hidden_%d", layerIdx))
		embeddings = sageLayer(layerCtx, embeddings, propagation, agg, hiddenDim, true)
	}
	logits := sageLayer(ctx.In("sage_output"), embeddings, propagation, agg, s.numClasses, false)
	logits.AssertDims(numNodes, s.numClasses)
	return logits
}

// sageLayer applies one round of neighborhood aggregation: the neighbor
// aggregate comes from a MatMul with the propagation matrix, is concatenated
// with each node's own embedding, and goes through a dense transform.
// Hidden layers get input dropout (training only) and an activation; the
// output layer is left as raw logits.
func sageLayer(ctx *context.Context, embeddings, propagation *Node, agg Aggregator, outputDim int, hidden bool) *Node {
	if hidden {
		embeddings = layers.DropoutFromContext(ctx, embeddings)
	}
	neighbors := embeddings
	if agg == AggregatorPool {
		// Learned pooling: transform the neighbor embeddings before the mean.
		neighbors = activations.ApplyFromContext(ctx,
			layers.DenseWithBias(ctx.In("pool"), neighbors, neighbors.Shape().Dim(-1)))
	}
	aggregate := MatMul(propagation, neighbors)
	combined := Concatenate([]*Node{embeddings, aggregate}, -1)
	output := layers.DenseWithBias(ctx.In("dense"), combined, outputDim)
	if hidden {
		output = activations.ApplyFromContext(ctx, output)
	}
	return output
}

// LossGraph implements Model: sparse categorical cross-entropy of the
// subset's logits against its labels, averaged over the subset.
func (s *Sage) LossGraph(ctx *context.Context, inputs []*Node, labels *Node) *Node {
	logits := s.ForwardGraph(ctx, inputs)
	subset := inputs[2]
	selected := Gather(logits, ExpandAxes(subset, -1))
	if labels.Rank() == 1 {
		labels = ExpandAxes(labels, -1)
	}
	loss := losses.SparseCategoricalCrossEntropyLogits([]*Node{labels}, []*Node{selected})
	if !loss.IsScalar() {
		loss = ReduceAllMean(loss)
	}
	return loss
}
