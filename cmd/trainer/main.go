// Command trainer trains a GraphSage node classifier on one of the built-in
// graphs and reports per-epoch loss, validation accuracy and the final test
// accuracy.
//
// Example:
//
//	trainer -dataset=karate -epochs=200 -config="hidden_dim=16,aggregator=gcn,dropout_rate=0.5"
//
// Use -config=help to list every hyperparameter and its default.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/citesage/citesage/internal/graphs"
	"github.com/citesage/citesage/internal/model"
	"github.com/citesage/citesage/internal/parameters"
	"github.com/citesage/citesage/internal/profilers"
	"github.com/citesage/citesage/internal/ui"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagDataset = flag.String("dataset", "karate", "Graph to train on: \"karate\" (Zachary's karate club) "+
		"or \"cliques\" (two disconnected cliques, a synthetic sanity check).")
	flagCliqueSize = flag.Int("clique_size", 8, "Nodes per clique for -dataset=cliques.")
	flagEpochs     = flag.Int("epochs", 200, "Number of training epochs: one full-batch step each.")
	flagConfig     = flag.String("config", "", "Comma-separated model hyperparameters, "+
		"e.g. \"hidden_dim=16,num_hidden_layers=1,aggregator=gcn,learning_rate=0.01\". "+
		"Pass \"help\" to list them all.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	profilers.Setup(context.Background())
	defer profilers.OnQuit()

	ds := must.M1(buildDataset())
	sage := model.NewSage(ds.Store.FeatureDim(), ds.NumClasses)

	if *flagConfig == "help" {
		model.WriteHyperparametersHelp(sage.Context())
		return
	}
	must.M(model.ApplyParams(sage.Context(), parameters.NewFromConfigString(*flagConfig)))

	trainer := must.M1(model.NewTrainer(sage, ds, model.Config{
		Epochs: *flagEpochs,
		EpochCallback: func(stats model.EpochStats) {
			fmt.Println(ui.EpochLine(stats))
		},
	}))

	klog.Infof("Training on %q: %d nodes, %d features, %d classes, %d/%d/%d train/val/test",
		*flagDataset, ds.Store.NumNodes(), ds.Store.FeatureDim(), ds.NumClasses,
		len(ds.Train), len(ds.Validation), len(ds.Test))
	result := must.M1(trainer.Run())
	ui.PrintSummary(result.TestAccuracy)
}

func buildDataset() (*graphs.Dataset, error) {
	switch *flagDataset {
	case "karate":
		return graphs.KarateClub(), nil
	case "cliques":
		return graphs.TwoCliques(*flagCliqueSize)
	}
	return nil, errors.Errorf("-dataset must be \"karate\" or \"cliques\", got %q", *flagDataset)
}
