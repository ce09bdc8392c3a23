package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/nameml/predictor"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

type trainFlags struct {
	modelType string
	split     float64
	params    map[string]string
	scaling   string
}

func (f *trainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.modelType, "model", "m", string(predictor.ModelRandomForest),
		"model type (randomForest, gradientBoosting, neuralNetwork, decisionTree, lstm, transformer)")
	cmd.Flags().Float64Var(&f.split, "split", predictor.DefaultTrainTestSplit, "fraction of records used for training")
	cmd.Flags().StringToStringVarP(&f.params, "param", "p", nil, "hyperparameter, e.g. -p numTrees=30 -p maxDepth=5")
	cmd.Flags().StringVar(&f.scaling, "scaling", "", "inference age scaling override (fixed, batch)")
}

func (f *trainFlags) options() predictor.TrainingOptions {
	hp := make(map[string]any, len(f.params))
	for k, v := range f.params {
		hp[k] = v
	}
	return predictor.TrainingOptions{
		ModelType:        predictor.ModelType(f.modelType),
		TrainTestSplit:   f.split,
		Hyperparameters:  hp,
		InferenceScaling: preprocessing.InferenceScaling(f.scaling),
	}
}

// train runs one training call bounded by the configured timeout.
func (a *app) train(ctx context.Context, svc *predictor.Service, opts predictor.TrainingOptions) (*predictor.ModelMetrics, error) {
	if a.cfg.TrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.TrainTimeout)
		defer cancel()
	}
	return svc.Train(ctx, opts)
}

func newTrainCmd(a *app) *cobra.Command {
	var f trainFlags
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on the built-in dataset and print its metrics",
		Example: `  nameml train --model gradientBoosting -p numTrees=25 -p learningRate=0.2
  nameml train --model lstm --split 0.7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.train(cmd.Context(), a.service(), f.options())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), m)
		},
	}
	f.register(cmd)
	return cmd
}
