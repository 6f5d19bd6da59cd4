// Package graphs implements the immutable graph store used for node
// classification: topology, per-node feature vectors, labels and the
// train/validation/test splits.
package graphs

import (
	"slices"

	"github.com/citesage/citesage/internal/generics"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// ErrOutOfRange is returned when a node or label index is outside its valid
// range.
var ErrOutOfRange = errors.New("index out of range")

// Edge is an unordered pair of node indices.
type Edge struct {
	U, V int32
}

// Store holds the topology and the per-node feature vectors of one graph.
// It is immutable after NewStore returns: all methods are read-only queries.
type Store struct {
	topology *simple.UndirectedGraph
	features *mat.Dense

	numNodes, featureDim int
}

// NewStore builds a store with numNodes nodes, the given undirected edges and
// one feature row per node. Every edge endpoint must be a valid node index,
// and all feature rows must share the same width.
func NewStore(numNodes int, edges []Edge, features [][]float64) (*Store, error) {
	if numNodes <= 0 {
		return nil, errors.Errorf("graph must have at least one node, got %d", numNodes)
	}
	if len(features) != numNodes {
		return nil, errors.Errorf("graph has %d nodes but %d feature rows", numNodes, len(features))
	}
	featureDim := len(features[0])
	if featureDim == 0 {
		return nil, errors.New("feature vectors must have at least one dimension")
	}

	topology := simple.NewUndirectedGraph()
	for v := range numNodes {
		topology.AddNode(simple.Node(int64(v)))
	}
	for _, e := range edges {
		if e.U < 0 || int(e.U) >= numNodes || e.V < 0 || int(e.V) >= numNodes {
			return nil, errors.Wrapf(ErrOutOfRange, "edge (%d, %d) on a graph with %d nodes", e.U, e.V, numNodes)
		}
		if e.U == e.V {
			return nil, errors.Errorf("self-edge (%d, %d) not supported", e.U, e.V)
		}
		topology.SetEdge(topology.NewEdge(simple.Node(int64(e.U)), simple.Node(int64(e.V))))
	}

	dense := mat.NewDense(numNodes, featureDim, nil)
	for v, row := range features {
		if len(row) != featureDim {
			return nil, errors.Errorf("feature row %d has width %d, expected %d", v, len(row), featureDim)
		}
		dense.SetRow(v, row)
	}

	return &Store{
		topology:   topology,
		features:   dense,
		numNodes:   numNodes,
		featureDim: featureDim,
	}, nil
}

// NumNodes returns the total number of nodes.
func (s *Store) NumNodes() int { return s.numNodes }

// FeatureDim returns the width of every feature vector.
func (s *Store) FeatureDim() int { return s.featureDim }

func (s *Store) checkNode(v int32) error {
	if v < 0 || int(v) >= s.numNodes {
		return errors.Wrapf(ErrOutOfRange, "node %d on a graph with %d nodes", v, s.numNodes)
	}
	return nil
}

// Neighbors returns the direct neighbors of v, sorted ascending.
func (s *Store) Neighbors(v int32) ([]int32, error) {
	if err := s.checkNode(v); err != nil {
		return nil, err
	}
	it := s.topology.From(int64(v))
	neighbors := make([]int32, 0, it.Len())
	for it.Next() {
		neighbors = append(neighbors, int32(it.Node().ID()))
	}
	slices.Sort(neighbors)
	return neighbors, nil
}

// Degree returns the number of direct neighbors of v.
func (s *Store) Degree(v int32) (int, error) {
	if err := s.checkNode(v); err != nil {
		return 0, err
	}
	return s.topology.From(int64(v)).Len(), nil
}

// Features returns the feature vector of v. The returned slice aliases the
// store's internal matrix and must not be modified.
func (s *Store) Features(v int32) ([]float64, error) {
	if err := s.checkNode(v); err != nil {
		return nil, err
	}
	return s.features.RawRowView(int(v)), nil
}

// Split identifies one of the three disjoint labeled node subsets.
type Split int

const (
	SplitTrain Split = iota
	SplitValidation
	SplitTest
)

// String implements fmt.Stringer.
func (s Split) String() string {
	switch s {
	case SplitTrain:
		return "train"
	case SplitValidation:
		return "validation"
	case SplitTest:
		return "test"
	}
	return "invalid"
}

// Dataset bundles a Store with per-node class labels and the three disjoint
// splits used for semi-supervised training. Nodes outside every split still
// participate in aggregation, only their labels are never consulted.
type Dataset struct {
	Store *Store

	// Labels holds one class per node, in [0, NumClasses).
	Labels     []int32
	NumClasses int

	Train, Validation, Test []int32
}

// Validate checks label ranges and the pairwise disjointness of the splits.
func (ds *Dataset) Validate() error {
	if ds.Store == nil {
		return errors.New("dataset has no graph store")
	}
	if ds.NumClasses <= 0 {
		return errors.Errorf("dataset must have at least one class, got %d", ds.NumClasses)
	}
	if len(ds.Labels) != ds.Store.NumNodes() {
		return errors.Errorf("dataset has %d labels for %d nodes", len(ds.Labels), ds.Store.NumNodes())
	}
	for v, label := range ds.Labels {
		if label < 0 || int(label) >= ds.NumClasses {
			return errors.Wrapf(ErrOutOfRange, "label %d of node %d with %d classes", label, v, ds.NumClasses)
		}
	}

	seen := generics.MakeSet[int32]()
	for _, split := range []Split{SplitTrain, SplitValidation, SplitTest} {
		for _, v := range ds.Nodes(split) {
			if err := ds.Store.checkNode(v); err != nil {
				return errors.WithMessagef(err, "%s split", split)
			}
			if seen.Has(v) {
				return errors.Errorf("node %d belongs to more than one split", v)
			}
			seen.Insert(v)
		}
	}
	return nil
}

// Nodes returns the node indices of the given split.
func (ds *Dataset) Nodes(split Split) []int32 {
	switch split {
	case SplitTrain:
		return ds.Train
	case SplitValidation:
		return ds.Validation
	case SplitTest:
		return ds.Test
	}
	return nil
}
