package parameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString("hidden_dim=16,aggregator=gcn,verbose,rate=1e-2")
	assert.Equal(t, Params{
		"hidden_dim": "16",
		"aggregator": "gcn",
		"verbose":    "",
		"rate":       "1e-2",
	}, params)

	assert.Empty(t, NewFromConfigString(""))
}

func TestGetParamOr(t *testing.T) {
	params := NewFromConfigString("width=8,rate=0.5,name=adam,flag")

	width, err := GetParamOr(params, "width", 3)
	require.NoError(t, err)
	assert.Equal(t, 8, width)

	rate, err := GetParamOr(params, "rate", float64(0))
	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)

	name, err := GetParamOr(params, "name", "sgd")
	require.NoError(t, err)
	assert.Equal(t, "adam", name)

	// Bool key without value means true.
	flag, err := GetParamOr(params, "flag", false)
	require.NoError(t, err)
	assert.True(t, flag)

	// Missing keys fall back to the default.
	missing, err := GetParamOr(params, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, missing)

	_, err = GetParamOr(params, "name", 1)
	require.Error(t, err)
}

func TestPopParamOr(t *testing.T) {
	params := NewFromConfigString("width=8")
	width, err := PopParamOr(params, "width", 0)
	require.NoError(t, err)
	assert.Equal(t, 8, width)
	assert.Empty(t, params)
}

func TestKeys(t *testing.T) {
	params := NewFromConfigString("b=1,a=2,c")
	assert.Equal(t, []string{"a", "b", "c"}, params.Keys())
}
