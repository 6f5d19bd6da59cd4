package graphs

import (
	"github.com/citesage/citesage/internal/generics"
	"github.com/pkg/errors"
)

// This file holds the built-in datasets: the Zachary karate-club graph, and
// small synthetic graphs used for sanity checks.

// karateEdges is the standard 78-edge undirected edge list of Zachary's
// karate club, 0-indexed.
var karateEdges = []Edge{
	{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {0, 7}, {0, 8},
	{0, 10}, {0, 11}, {0, 12}, {0, 13}, {0, 17}, {0, 19}, {0, 21}, {0, 31},
	{1, 2}, {1, 3}, {1, 7}, {1, 13}, {1, 17}, {1, 19}, {1, 21}, {1, 30},
	{2, 3}, {2, 7}, {2, 8}, {2, 9}, {2, 13}, {2, 27}, {2, 28}, {2, 32},
	{3, 7}, {3, 12}, {3, 13},
	{4, 6}, {4, 10},
	{5, 6}, {5, 10}, {5, 16},
	{6, 16},
	{8, 30}, {8, 32}, {8, 33},
	{9, 33},
	{13, 33},
	{14, 32}, {14, 33},
	{15, 32}, {15, 33},
	{18, 32}, {18, 33},
	{19, 33},
	{20, 32}, {20, 33},
	{22, 32}, {22, 33},
	{23, 25}, {23, 27}, {23, 29}, {23, 32}, {23, 33},
	{24, 25}, {24, 27}, {24, 31},
	{25, 31},
	{26, 29}, {26, 33},
	{27, 33},
	{28, 31}, {28, 33},
	{29, 32}, {29, 33},
	{30, 32}, {30, 33},
	{31, 32}, {31, 33},
	{32, 33},
}

// karateLabels is the club each member ended up in after the split:
// 0 = Mr. Hi's club, 1 = the officers' club.
var karateLabels = []int32{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	0, 0, 0, 0, 1, 1, 0, 0, 1, 0,
	1, 0, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1,
}

// KarateClub returns Zachary's karate-club graph: 34 members, 78 friendship
// edges, and the club each member joined after the split as the 2-class
// label. Features are one-hot node identities. The two community leaders
// (the instructor, node 0, and the president, node 33) form the training
// split, the classic semi-supervised setup.
func KarateClub() *Dataset {
	const numNodes = 34
	features := make([][]float64, numNodes)
	for v := range numNodes {
		features[v] = make([]float64, numNodes)
		features[v][v] = 1
	}
	store, err := NewStore(numNodes, karateEdges, features)
	if err != nil {
		// The embedded data is static, this cannot happen.
		panic(err)
	}

	ds := &Dataset{
		Store:      store,
		Labels:     karateLabels,
		NumClasses: 2,
		Train:      []int32{0, 33},
		Validation: []int32{2, 4, 8, 13, 23, 24, 27, 30},
	}
	inTrainOrVal := generics.SetWith(ds.Train...)
	inTrainOrVal.Insert(ds.Validation...)
	for v := int32(0); v < numNodes; v++ {
		if !inTrainOrVal.Has(v) {
			ds.Test = append(ds.Test, v)
		}
	}
	return ds
}

// TwoCliques returns a synthetic dataset of two disconnected cliques of k
// nodes each, with a distinct uniform feature vector and label per clique.
// The classes are trivially separable, which makes the dataset useful as a
// does-the-loss-go-down sanity check.
func TwoCliques(k int) (*Dataset, error) {
	if k < 3 {
		return nil, errors.Errorf("cliques need at least 3 nodes each, got %d", k)
	}
	numNodes := 2 * k
	var edges []Edge
	for block := range 2 {
		base := int32(block * k)
		for i := int32(0); i < int32(k); i++ {
			for j := i + 1; j < int32(k); j++ {
				edges = append(edges, Edge{base + i, base + j})
			}
		}
	}
	features := make([][]float64, numNodes)
	labels := make([]int32, numNodes)
	for v := range numNodes {
		features[v] = make([]float64, 2)
		if v < k {
			features[v][0] = 1
		} else {
			features[v][1] = 1
			labels[v] = 1
		}
	}
	store, err := NewStore(numNodes, edges, features)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Store:      store,
		Labels:     labels,
		NumClasses: 2,
		Train:      []int32{0, int32(k)},
		Validation: []int32{1, int32(k) + 1},
	}
	for v := int32(0); v < int32(numNodes); v++ {
		if v != 0 && v != 1 && v != int32(k) && v != int32(k)+1 {
			ds.Test = append(ds.Test, v)
		}
	}
	return ds, nil
}

// Chain returns a path graph 0-1-…-(n-1) with 2-dimensional one-hot-like
// features and 2 classes: the first half of the chain is class 0, the rest
// class 1. One node per class is labeled for training.
func Chain(n int) (*Dataset, error) {
	if n < 4 {
		return nil, errors.Errorf("chain needs at least 4 nodes, got %d", n)
	}
	edges := make([]Edge, 0, n-1)
	for v := int32(0); v < int32(n)-1; v++ {
		edges = append(edges, Edge{v, v + 1})
	}
	features := make([][]float64, n)
	labels := make([]int32, n)
	half := (n + 1) / 2
	for v := range n {
		features[v] = make([]float64, 2)
		if v < half {
			features[v][0] = 1
		} else {
			features[v][1] = 1
			labels[v] = 1
		}
	}
	store, err := NewStore(n, edges, features)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Store:      store,
		Labels:     labels,
		NumClasses: 2,
		Train:      []int32{0, int32(n) - 1},
		Validation: []int32{1},
		Test:       []int32{int32(n) - 2},
	}, nil
}
