package model

import (
	"github.com/citesage/citesage/internal/graphs"
	"github.com/pkg/errors"
)

// Accuracy reports the fraction of subset nodes whose arg-max class matches
// their true label. logits is a flattened [numNodes, numClasses] score
// table; ties between equal maximal scores resolve to the lowest class
// index.
func Accuracy(logits []float32, numClasses int, subset []int32, labels []int32) (float32, error) {
	if len(subset) == 0 {
		return 0, errors.WithStack(ErrEmptySubset)
	}
	if numClasses <= 0 {
		return 0, errors.Errorf("need at least one class, got %d", numClasses)
	}
	if len(logits)%numClasses != 0 {
		return 0, errors.Wrapf(ErrShapeMismatch, "%d logits are not a multiple of %d classes",
			len(logits), numClasses)
	}
	numNodes := len(logits) / numClasses
	correct := 0
	for _, v := range subset {
		if v < 0 || int(v) >= numNodes {
			return 0, errors.Wrapf(graphs.ErrOutOfRange, "subset node %d with %d score rows", v, numNodes)
		}
		if int(v) >= len(labels) {
			return 0, errors.Wrapf(graphs.ErrOutOfRange, "subset node %d with %d labels", v, len(labels))
		}
		predicted := argMax(logits[int(v)*numClasses : (int(v)+1)*numClasses])
		if predicted == int(labels[v]) {
			correct++
		}
	}
	return float32(correct) / float32(len(subset)), nil
}

// argMax returns the index of the largest score; the strict comparison keeps
// the lowest index among ties.
func argMax(scores []float32) int {
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}
