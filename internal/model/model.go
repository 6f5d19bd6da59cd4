// Package model implements the GraphSage network and its training loop on
// top of GoMLX: the model builds computation graphs, GoMLX supplies the
// layers, reverse-mode differentiation and the optimizer.
package model

import (
	"github.com/citesage/citesage/internal/graphs"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch is returned when an input table's width does not match
	// what a layer was configured for.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEmptySubset is returned when a loss or accuracy is requested over an
	// empty node subset.
	ErrEmptySubset = errors.New("empty node subset")
)

// Model is a GoMLX supported model, the backend of the Trainer.
type Model interface {
	// Context used by the model: with both its weights and hyperparameters.
	Context() *context.Context

	// CreateInputs builds the tensors shared by every executor call: the
	// node-feature table and the propagation matrix of the configured
	// aggregator. They are computed once per dataset and reused across steps.
	CreateInputs(ds *graphs.Dataset) ([]*tensors.Tensor, error)

	// ForwardGraph is the GoMLX graph function with the forward path.
	// inputs[0] is the feature table, inputs[1] the propagation matrix; any
	// further inputs (subset indices) are ignored by the forward pass.
	// It must return the per-node class logits, shaped [numNodes, numClasses].
	ForwardGraph(ctx *context.Context, inputs []*graph.Node) *graph.Node

	// LossGraph calculates the loss given the inputs of ForwardGraph plus a
	// subset-index vector in inputs[2], and the integer labels of that
	// subset. It must return a scalar.
	LossGraph(ctx *context.Context, inputs []*graph.Node, labels *graph.Node) *graph.Node
}
