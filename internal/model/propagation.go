package model

import (
	"strings"

	"github.com/citesage/citesage/internal/graphs"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Aggregator selects how a node's neighborhood is summarized into one vector.
type Aggregator int

const (
	// AggregatorSum adds the neighbor embeddings.
	AggregatorSum Aggregator = iota

	// AggregatorMean averages the neighbor embeddings.
	AggregatorMean

	// AggregatorGCN averages the neighbor embeddings with the node's own
	// embedding folded into the set, GCN style.
	AggregatorGCN

	// AggregatorPool applies a learned transform to the neighbor embeddings
	// before averaging them.
	AggregatorPool
)

var aggregatorNames = map[Aggregator]string{
	AggregatorSum:  "sum",
	AggregatorMean: "mean",
	AggregatorGCN:  "gcn",
	AggregatorPool: "pool",
}

// String implements fmt.Stringer.
func (a Aggregator) String() string {
	if name, ok := aggregatorNames[a]; ok {
		return name
	}
	return "invalid"
}

// AggregatorFromName parses an aggregator name, case-insensitive.
func AggregatorFromName(name string) (Aggregator, error) {
	lower := strings.ToLower(name)
	for agg, aggName := range aggregatorNames {
		if aggName == lower {
			return agg, nil
		}
	}
	return 0, errors.Errorf("unknown aggregator %q, valid values are sum, mean, gcn and pool", name)
}

// PropagationMatrix compiles the aggregation policy over the store's
// topology into a dense [numNodes, numNodes] float32 matrix, so the
// neighbor aggregate of every node is a single MatMul with the embedding
// table:
//
//   - AggregatorSum: the raw adjacency matrix.
//   - AggregatorMean, AggregatorPool: the row-normalized adjacency matrix.
//   - AggregatorGCN: the row-normalized adjacency matrix with self-loops
//     added, folding each node's own embedding into the average.
//
// Rows of isolated nodes are left all-zero, which makes their aggregate the
// zero vector.
func PropagationMatrix(store *graphs.Store, agg Aggregator) (*tensors.Tensor, error) {
	numNodes := store.NumNodes()
	matrix := tensors.FromShape(shapes.Make(dtypes.Float32, numNodes, numNodes))
	var buildErr error
	tensors.MutableFlatData(matrix, func(flat []float32) {
		for v := 0; v < numNodes && buildErr == nil; v++ {
			neighbors, err := store.Neighbors(int32(v))
			if err != nil {
				buildErr = err
				return
			}
			row := flat[v*numNodes : (v+1)*numNodes]
			for _, u := range neighbors {
				row[u] = 1
			}
			count := len(neighbors)
			if agg == AggregatorGCN {
				row[v] += 1
				count++
			}
			if agg != AggregatorSum && count > 0 {
				norm := 1 / float32(count)
				for u := range row {
					row[u] *= norm
				}
			}
		}
	})
	if buildErr != nil {
		return nil, errors.WithMessage(buildErr, "building propagation matrix")
	}
	return matrix, nil
}
