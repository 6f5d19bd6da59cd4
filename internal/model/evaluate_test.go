package model

import (
	"testing"

	"github.com/citesage/citesage/internal/graphs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	// 3 nodes, 2 classes.
	logits := []float32{
		2, 1, // node 0 → class 0
		0, 3, // node 1 → class 1
		5, 4, // node 2 → class 0
	}
	labels := []int32{0, 1, 1}

	acc, err := Accuracy(logits, 2, []int32{0, 1, 2}, labels)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, acc, 1e-6)

	acc, err = Accuracy(logits, 2, []int32{0, 1}, labels)
	require.NoError(t, err)
	assert.Equal(t, float32(1), acc)
}

func TestAccuracyTiesPickLowestClass(t *testing.T) {
	// All scores tied: arg-max must resolve to class 0 for every node.
	logits := []float32{
		1, 1, 1,
		-2, -2, -2,
	}
	labels := []int32{0, 0}
	acc, err := Accuracy(logits, 3, []int32{0, 1}, labels)
	require.NoError(t, err)
	assert.Equal(t, float32(1), acc)

	// Tie between classes 1 and 2 resolves to 1.
	logits = []float32{0, 7, 7}
	acc, err = Accuracy(logits, 3, []int32{0}, []int32{1})
	require.NoError(t, err)
	assert.Equal(t, float32(1), acc)
	acc, err = Accuracy(logits, 3, []int32{0}, []int32{2})
	require.NoError(t, err)
	assert.Zero(t, acc)
}

func TestAccuracyErrors(t *testing.T) {
	logits := []float32{1, 2, 3, 4}
	labels := []int32{1, 1}

	_, err := Accuracy(logits, 2, nil, labels)
	require.ErrorIs(t, err, ErrEmptySubset)

	_, err = Accuracy(logits[:3], 2, []int32{0}, labels)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Accuracy(logits, 2, []int32{2}, labels)
	require.ErrorIs(t, err, graphs.ErrOutOfRange)
}
