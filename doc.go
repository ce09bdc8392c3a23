// Package nameml predicts likely first names from demographic attributes
// (age, gender, region, education level and ethnicity).
//
// nameml trains small tree-ensemble and neural-network classifiers on a
// built-in labelled dataset and serves ranked predictions through a Go API,
// an HTTP service and a command line tool.
//
// # Features
//
//   - Random forest, gradient boosting, single decision tree and a
//     one-hidden-layer neural network behind one Classifier interface
//   - Fixed feature schema: one-hot demographics plus a scaled age
//   - Test-split metrics: accuracy, macro precision/recall/F1, confusion
//     matrix and per-attribute accuracy spread
//   - Feedback-driven drift detection (DDM) and confidence drift (ADWIN)
//   - Structured logging with zerolog, typed errors with stack traces
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/nameml/predictor"
//	    "github.com/YuminosukeSato/nameml/preprocessing"
//	)
//
//	func main() {
//	    svc := predictor.New(predictor.WithSeed(42))
//
//	    ctx := context.Background()
//	    if _, err := svc.Train(ctx, predictor.TrainingOptions{
//	        ModelType:      predictor.ModelRandomForest,
//	        TrainTestSplit: 0.8,
//	    }); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    res, err := svc.Predict(ctx, preprocessing.DemographicRecord{
//	        Age:            28,
//	        Gender:         preprocessing.GenderFemale,
//	        Location:       preprocessing.RegionNortheast,
//	        EducationLevel: preprocessing.EducationBachelors,
//	        Ethnicity:      preprocessing.EthnicityHispanic,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Names)
//	}
//
// # Packages
//
//   - predictor: training and prediction service with a single model slot
//   - preprocessing: record cleaning, feature engineering, age scaling, splits
//   - sklearn/tree: classification tree and regression tree
//   - sklearn/ensemble: random forest and gradient boosting
//   - sklearn/neural_network: MLP classifier on gonum matrices
//   - sklearn/drift: DDM and ADWIN detectors and the feedback monitor
//   - metrics: classification, regression and fairness metrics
//   - dataset: built-in records and dataset statistics
//   - api: gin HTTP handlers
//   - config: environment configuration
//   - core/model: fit state, vocabularies, ranking and training callbacks
//   - core/parallel: chunked parallel loops
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Command line
//
//	nameml serve --warmup randomForest
//	nameml train --model gradientBoosting -p numTrees=25
//	nameml predict --age 28 --gender female --location Northeast
//	nameml stats
package nameml
