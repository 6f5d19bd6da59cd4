package model

import (
	"bytes"
	"fmt"

	"github.com/citesage/citesage/internal/parameters"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ApplyParams overwrites the context's root-scope hyperparameters with the
// user-given params, parsing each value to the type of the default. Keys
// left in params afterwards are unknown and reported as an error.
func ApplyParams(ctx *context.Context, params parameters.Params) error {
	var err error
	ctx.EnumerateParams(func(scope, key string, valueAny any) {
		if err != nil || scope != context.RootScope {
			return
		}
		switch defaultValue := valueAny.(type) {
		case string:
			value, _ := parameters.PopParamOr(params, key, defaultValue)
			ctx.SetParam(key, value)
		case int:
			value, newErr := parameters.PopParamOr(params, key, defaultValue)
			if newErr != nil {
				err = errors.WithMessagef(newErr, "parsing %q (int)", key)
				return
			}
			ctx.SetParam(key, value)
		case float32:
			value, newErr := parameters.PopParamOr(params, key, defaultValue)
			if newErr != nil {
				err = errors.WithMessagef(newErr, "parsing %q (float32)", key)
				return
			}
			ctx.SetParam(key, value)
		case float64:
			value, newErr := parameters.PopParamOr(params, key, defaultValue)
			if newErr != nil {
				err = errors.WithMessagef(newErr, "parsing %q (float64)", key)
				return
			}
			ctx.SetParam(key, value)
		case bool:
			value, newErr := parameters.PopParamOr(params, key, defaultValue)
			if newErr != nil {
				err = errors.WithMessagef(newErr, "parsing %q (bool)", key)
				return
			}
			ctx.SetParam(key, value)
		default:
			err = errors.Errorf("hyperparameter %q is of unknown type %T", key, defaultValue)
		}
	})
	if err != nil {
		return err
	}
	if len(params) > 0 {
		return errors.Errorf("unknown hyperparameters: %v", params.Keys())
	}
	return nil
}

// WriteHyperparametersHelp logs every root-scope hyperparameter and its
// default value.
func WriteHyperparametersHelp(ctx *context.Context) {
	buf := &bytes.Buffer{}
	_, _ = fmt.Fprintf(buf, "Model hyperparameters:\n")
	ctx.EnumerateParams(func(scope, key string, value any) {
		if scope != context.RootScope {
			return
		}
		_, _ = fmt.Fprintf(buf, "\t%q: default value is %v\n", key, value)
	})
	klog.Info(buf)
}
