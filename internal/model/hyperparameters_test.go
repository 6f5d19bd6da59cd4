package model

import (
	"testing"

	"github.com/citesage/citesage/internal/parameters"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyParams(t *testing.T) {
	sage := NewSage(4, 2)
	ctx := sage.Context()
	params := parameters.NewFromConfigString("hidden_dim=32,aggregator=mean,learning_rate=0.05")
	require.NoError(t, ApplyParams(ctx, params))
	assert.Equal(t, 32, context.GetParamOr(ctx, ParamHiddenDim, 0))
	assert.Equal(t, "mean", context.GetParamOr(ctx, ParamAggregator, ""))
	assert.Equal(t, 0.05, context.GetParamOr(ctx, optimizers.ParamLearningRate, 0.0))
}

func TestApplyParamsUnknownKey(t *testing.T) {
	sage := NewSage(4, 2)
	err := ApplyParams(sage.Context(), parameters.NewFromConfigString("hiden_dim=32"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hiden_dim")
}

func TestApplyParamsBadValue(t *testing.T) {
	sage := NewSage(4, 2)
	err := ApplyParams(sage.Context(), parameters.NewFromConfigString("hidden_dim=wide"))
	require.Error(t, err)
}
