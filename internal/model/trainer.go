package model

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/citesage/citesage/internal/graphs"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/xla"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/train"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// Backend is a singleton, shared by every trainer.
	backend = sync.OnceValue(func() backends.Backend { return backends.New() })
)

// Config holds the run parameters of a Trainer that are not model
// hyperparameters.
type Config struct {
	// Epochs is the number of training steps: one full-batch step over the
	// train subset per epoch.
	Epochs int

	// EpochCallback, if set, is called after every epoch's validation pass.
	EpochCallback func(stats EpochStats)
}

// EpochStats reports one epoch of training.
type EpochStats struct {
	Epoch int

	// TrainLoss is the loss of this epoch's training step; SmoothedLoss is
	// its exponential moving average across epochs.
	TrainLoss, SmoothedLoss float32

	// ValidationAccuracy on the validation subset, dropout disabled.
	// Zero when the dataset has no validation subset.
	ValidationAccuracy float32
}

// Result of a full training run.
type Result struct {
	Epochs       []EpochStats
	TestAccuracy float32
}

// Trainer owns the training state machine: it repeatedly computes the loss
// over the train subset, lets the optimizer update every learnable
// parameter, and evaluates accuracy on the held-out subsets. All heavy
// computation happens inside GoMLX executors; the data tensors are built
// once and reused every step.
type Trainer struct {
	model   Model
	dataset *graphs.Dataset
	config  Config

	// Executors.
	logitsExec, lossExec, trainStepExec *context.Exec

	// optimizer used by trainStepExec.
	optimizer optimizers.Interface

	// inputs: feature table and propagation matrix.
	inputs []*tensors.Tensor

	// Per-split subset index and label tensors, for non-empty splits only.
	subsetIdx, subsetLabels map[graphs.Split]*tensors.Tensor
}

// NewTrainer validates the configuration and dataset, builds the input
// tensors and compiles the executors.
func NewTrainer(m Model, ds *graphs.Dataset, config Config) (*Trainer, error) {
	if config.Epochs <= 0 {
		return nil, errors.Errorf("epoch count must be positive, got %d", config.Epochs)
	}
	if err := ds.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid dataset")
	}
	if len(ds.Train) == 0 {
		return nil, errors.Wrap(ErrEmptySubset, "train split")
	}
	ctx := m.Context()
	if numHidden := context.GetParamOr(ctx, ParamNumHiddenLayers, 1); numHidden < 0 {
		return nil, errors.Errorf("hidden layer count must be non-negative, got %d", numHidden)
	}
	if hiddenDim := context.GetParamOr(ctx, ParamHiddenDim, 16); hiddenDim <= 0 {
		return nil, errors.Errorf("hidden layer width must be positive, got %d", hiddenDim)
	}
	if seed := context.GetParamOr(ctx, ParamSeed, -1); seed >= 0 {
		ctx.RngStateFromSeed(int64(seed))
	}

	inputs, err := m.CreateInputs(ds)
	if err != nil {
		return nil, err
	}

	t := &Trainer{
		model:        m,
		dataset:      ds,
		config:       config,
		inputs:       inputs,
		subsetIdx:    make(map[graphs.Split]*tensors.Tensor),
		subsetLabels: make(map[graphs.Split]*tensors.Tensor),
	}
	for _, split := range []graphs.Split{graphs.SplitTrain, graphs.SplitValidation, graphs.SplitTest} {
		subset := ds.Nodes(split)
		if len(subset) == 0 {
			continue
		}
		t.subsetIdx[split], t.subsetLabels[split] = subsetTensors(subset, ds.Labels)
	}
	t.optimizer = optimizers.FromContext(ctx)
	t.createExecutors()
	return t, nil
}

// subsetTensors builds the index vector of a subset and the matching labels.
func subsetTensors(subset []int32, labels []int32) (idx, subsetLabels *tensors.Tensor) {
	idx = tensors.FromShape(shapes.Make(dtypes.Int32, len(subset)))
	tensors.MutableFlatData(idx, func(flat []int32) {
		copy(flat, subset)
	})
	subsetLabels = tensors.FromShape(shapes.Make(dtypes.Int32, len(subset)))
	tensors.MutableFlatData(subsetLabels, func(flat []int32) {
		for i, v := range subset {
			flat[i] = labels[v]
		}
	})
	return
}

func (t *Trainer) createExecutors() {
	ctx := t.model.Context()
	t.logitsExec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, inputs []*graph.Node) *graph.Node {
			return t.model.ForwardGraph(ctx, inputs)
		})
	t.lossExec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, inputsAndLabels []*graph.Node) *graph.Node {
			inputs := inputsAndLabels[:len(inputsAndLabels)-1]
			labels := inputsAndLabels[len(inputsAndLabels)-1]
			return t.model.LossGraph(ctx, inputs, labels)
		})
	t.trainStepExec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, inputsAndLabels []*graph.Node) *graph.Node {
			g := inputsAndLabels[0].Graph()
			ctx.SetTraining(g, true)
			inputs := inputsAndLabels[:len(inputsAndLabels)-1]
			labels := inputsAndLabels[len(inputsAndLabels)-1]
			loss := t.model.LossGraph(ctx, inputs, labels)
			t.optimizer.UpdateGraph(ctx, g, loss)
			train.ExecPerStepUpdateGraphFn(ctx, g)
			return loss
		})
}

// splitArgs assembles the executor arguments for a subset loss: feature
// table, propagation matrix, subset indices and subset labels.
func (t *Trainer) splitArgs(split graphs.Split) ([]any, error) {
	idx, ok := t.subsetIdx[split]
	if !ok {
		return nil, errors.Wrapf(ErrEmptySubset, "%s split", split)
	}
	return []any{t.inputs[0], t.inputs[1], idx, t.subsetLabels[split]}, nil
}

// TrainStep performs one optimizer update over the train subset and returns
// the training loss before the update. A non-finite loss aborts the run.
func (t *Trainer) TrainStep() (loss float32, err error) {
	args, err := t.splitArgs(graphs.SplitTrain)
	if err != nil {
		return 0, err
	}
	err = exceptions.TryCatch[error](func() {
		lossT := t.trainStepExec.Call(args...)[0]
		loss = tensors.ToScalar[float32](lossT)
	})
	if err != nil {
		return 0, errors.WithMessage(err, "train step")
	}
	if math32.IsNaN(loss) || math32.IsInf(loss, 0) {
		return loss, errors.Errorf("training loss is not finite (%f), aborting", loss)
	}
	return loss, nil
}

// Loss computes the current loss over a subset without updating parameters,
// dropout disabled.
func (t *Trainer) Loss(split graphs.Split) (loss float32, err error) {
	args, err := t.splitArgs(split)
	if err != nil {
		return 0, err
	}
	err = exceptions.TryCatch[error](func() {
		lossT := t.lossExec.Call(args...)[0]
		loss = tensors.ToScalar[float32](lossT)
	})
	if err != nil {
		return 0, errors.WithMessagef(err, "loss on %s split", split)
	}
	return loss, nil
}

// Logits recomputes the forward pass in inference mode (dropout disabled)
// and returns the flattened [numNodes, numClasses] class scores.
func (t *Trainer) Logits() (logits []float32, err error) {
	err = exceptions.TryCatch[error](func() {
		logitsT := t.logitsExec.Call(t.inputs[0], t.inputs[1])[0]
		logits = tensors.CopyFlatData[float32](logitsT)
	})
	if err != nil {
		return nil, errors.WithMessage(err, "forward pass")
	}
	return logits, nil
}

// Evaluate reports classification accuracy on the given subset, dropout
// disabled.
func (t *Trainer) Evaluate(split graphs.Split) (float32, error) {
	subset := t.dataset.Nodes(split)
	logits, err := t.Logits()
	if err != nil {
		return 0, err
	}
	acc, err := Accuracy(logits, t.dataset.NumClasses, subset, t.dataset.Labels)
	if err != nil {
		return 0, errors.WithMessagef(err, "evaluating %s split", split)
	}
	return acc, nil
}

// Run executes the full training state machine: Epochs rounds of one train
// step plus one validation pass, then a final accuracy computation on the
// test subset. Any error is fatal, there are no retries.
func (t *Trainer) Run() (*Result, error) {
	result := &Result{Epochs: make([]EpochStats, 0, t.config.Epochs)}
	var smoothed float32
	for epoch := range t.config.Epochs {
		loss, err := t.TrainStep()
		if err != nil {
			return nil, errors.WithMessagef(err, "epoch %d", epoch)
		}
		smoothed = movingAverage(smoothed, loss, smoothedLossDecay, epoch+1)
		stats := EpochStats{Epoch: epoch, TrainLoss: loss, SmoothedLoss: smoothed}
		if len(t.dataset.Validation) > 0 {
			stats.ValidationAccuracy, err = t.Evaluate(graphs.SplitValidation)
			if err != nil {
				return nil, errors.WithMessagef(err, "epoch %d", epoch)
			}
		}
		klog.V(1).Infof("epoch %d: loss=%.4f (smoothed %.4f), validation accuracy=%.1f%%",
			epoch, stats.TrainLoss, stats.SmoothedLoss, 100*stats.ValidationAccuracy)
		if t.config.EpochCallback != nil {
			t.config.EpochCallback(stats)
		}
		result.Epochs = append(result.Epochs, stats)
	}
	if len(t.dataset.Test) > 0 {
		acc, err := t.Evaluate(graphs.SplitTest)
		if err != nil {
			return nil, err
		}
		result.TestAccuracy = acc
	}
	return result, nil
}

const smoothedLossDecay = float32(0.95)

func movingAverage(average, newValue, decay float32, count int) float32 {
	decay = min(1-1/float32(count), decay)
	return average*decay + (1-decay)*newValue
}
