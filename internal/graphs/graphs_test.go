package graphs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleWithTail(t *testing.T) *Store {
	// 0-1-2 triangle, 3 hangs off 2, 4 isolated.
	store, err := NewStore(5,
		[]Edge{{0, 1}, {1, 2}, {2, 0}, {2, 3}},
		[][]float64{{1, 0}, {0, 1}, {1, 1}, {0, 0}, {2, 2}})
	require.NoError(t, err)
	return store
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore(0, nil, nil)
	require.Error(t, err)

	// Edge endpoint outside [0, N).
	_, err = NewStore(2, []Edge{{0, 2}}, [][]float64{{1}, {1}})
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewStore(2, []Edge{{-1, 0}}, [][]float64{{1}, {1}})
	require.ErrorIs(t, err, ErrOutOfRange)

	// Ragged feature rows.
	_, err = NewStore(2, nil, [][]float64{{1, 2}, {1}})
	require.Error(t, err)

	// Wrong number of feature rows.
	_, err = NewStore(3, nil, [][]float64{{1}, {1}})
	require.Error(t, err)
}

func TestStoreQueries(t *testing.T) {
	store := triangleWithTail(t)
	require.Equal(t, 5, store.NumNodes())
	require.Equal(t, 2, store.FeatureDim())

	neighbors, err := store.Neighbors(2)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 3}, neighbors)

	degree, err := store.Degree(4)
	require.NoError(t, err)
	assert.Zero(t, degree)

	features, err := store.Features(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, features)

	_, err = store.Neighbors(5)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = store.Features(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = store.Degree(17)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestDatasetValidate(t *testing.T) {
	store := triangleWithTail(t)
	ds := &Dataset{
		Store:      store,
		Labels:     []int32{0, 0, 1, 1, 0},
		NumClasses: 2,
		Train:      []int32{0},
		Validation: []int32{1},
		Test:       []int32{2, 3},
	}
	require.NoError(t, ds.Validate())

	overlapping := *ds
	overlapping.Test = []int32{1, 2}
	require.Error(t, overlapping.Validate())

	badLabel := *ds
	badLabel.Labels = []int32{0, 0, 2, 1, 0}
	require.ErrorIs(t, badLabel.Validate(), ErrOutOfRange)

	badSplit := *ds
	badSplit.Test = []int32{2, 9}
	require.ErrorIs(t, badSplit.Validate(), ErrOutOfRange)
}

func TestSplitString(t *testing.T) {
	assert.Equal(t, "train", SplitTrain.String())
	assert.Equal(t, "validation", SplitValidation.String())
	assert.Equal(t, "test", SplitTest.String())
}
