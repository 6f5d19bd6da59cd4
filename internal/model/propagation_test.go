package model

import (
	"testing"

	"github.com/citesage/citesage/internal/graphs"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeWithIsolated builds 0-1-2 in a line plus isolated node 3.
func storeWithIsolated(t *testing.T) *graphs.Store {
	store, err := graphs.NewStore(4,
		[]graphs.Edge{{U: 0, V: 1}, {U: 1, V: 2}},
		[][]float64{{1}, {1}, {1}, {1}})
	require.NoError(t, err)
	return store
}

func propagationRows(t *testing.T, store *graphs.Store, agg Aggregator) [][]float32 {
	matrix, err := PropagationMatrix(store, agg)
	require.NoError(t, err)
	flat := tensors.CopyFlatData[float32](matrix)
	n := store.NumNodes()
	require.Len(t, flat, n*n)
	rows := make([][]float32, n)
	for v := range n {
		rows[v] = flat[v*n : (v+1)*n]
	}
	return rows
}

func TestPropagationMatrixSum(t *testing.T) {
	rows := propagationRows(t, storeWithIsolated(t), AggregatorSum)
	assert.Equal(t, []float32{0, 1, 0, 0}, rows[0])
	assert.Equal(t, []float32{1, 0, 1, 0}, rows[1])
	assert.Equal(t, []float32{0, 1, 0, 0}, rows[2])
}

func TestPropagationMatrixMean(t *testing.T) {
	rows := propagationRows(t, storeWithIsolated(t), AggregatorMean)
	assert.Equal(t, []float32{0, 1, 0, 0}, rows[0])
	assert.Equal(t, []float32{0.5, 0, 0.5, 0}, rows[1])

	// Pool shares the mean matrix, its learned transform lives in the layer.
	assert.Equal(t, rows, propagationRows(t, storeWithIsolated(t), AggregatorPool))
}

func TestPropagationMatrixGCN(t *testing.T) {
	rows := propagationRows(t, storeWithIsolated(t), AggregatorGCN)
	// The node's own embedding is folded into the average.
	assert.Equal(t, []float32{0.5, 0.5, 0, 0}, rows[0])
	third := float32(1) / 3
	assert.Equal(t, []float32{third, third, third, 0}, rows[1])
	// Isolated node aggregates only itself under gcn.
	assert.Equal(t, []float32{0, 0, 0, 1}, rows[3])
}

func TestPropagationMatrixIsolatedNodeIsZero(t *testing.T) {
	// Under sum and mean an isolated node must aggregate to the zero vector.
	for _, agg := range []Aggregator{AggregatorSum, AggregatorMean, AggregatorPool} {
		rows := propagationRows(t, storeWithIsolated(t), agg)
		assert.Equal(t, []float32{0, 0, 0, 0}, rows[3], "aggregator %s", agg)
	}
}

func TestAggregatorNames(t *testing.T) {
	for _, agg := range []Aggregator{AggregatorSum, AggregatorMean, AggregatorGCN, AggregatorPool} {
		parsed, err := AggregatorFromName(agg.String())
		require.NoError(t, err)
		assert.Equal(t, agg, parsed)
	}
	parsed, err := AggregatorFromName("GCN")
	require.NoError(t, err)
	assert.Equal(t, AggregatorGCN, parsed)

	_, err = AggregatorFromName("median")
	require.Error(t, err)
}
