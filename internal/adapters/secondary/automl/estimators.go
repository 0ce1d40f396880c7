package automl

import (
	"encoding/gob"
	"errors"

	"gonum.org/v1/gonum/mat"
)

var errEmptyTrainingSet = errors.New("empty training set")

// Estimator is a regression model over an encoded feature matrix.
type Estimator interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X mat.Matrix) []float64
	// String renders the estimator with its hyperparameters.
	String() string
}

// Candidate is one model family the comparison step evaluates.
type Candidate struct {
	Code string
	Name string
	New  func(seed int64) Estimator
}

// Candidates lists every supported model in comparison order.
func Candidates() []Candidate {
	return []Candidate{
		{Code: "lr", Name: "Linear Regression", New: func(int64) Estimator { return &LinearRegression{} }},
		{Code: "ridge", Name: "Ridge Regression", New: func(seed int64) Estimator { return &Ridge{Alpha: 1, Seed: seed} }},
		{Code: "lasso", Name: "Lasso Regression", New: func(seed int64) Estimator {
			return &ElasticNet{Alpha: 1, L1Ratio: 1, MaxIter: 1000, Tol: 1e-4, Seed: seed}
		}},
		{Code: "en", Name: "Elastic Net", New: func(seed int64) Estimator {
			return &ElasticNet{Alpha: 1, L1Ratio: 0.5, MaxIter: 1000, Tol: 1e-4, Seed: seed}
		}},
		{Code: "knn", Name: "K Neighbors Regressor", New: func(int64) Estimator { return &KNeighbors{K: 5} }},
		{Code: "dt", Name: "Decision Tree Regressor", New: func(seed int64) Estimator {
			return &DecisionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1, MaxDepth: 64, Seed: seed}
		}},
		{Code: "dummy", Name: "Dummy Regressor", New: func(int64) Estimator { return &Dummy{} }},
	}
}

func init() {
	gob.Register(&LinearRegression{})
	gob.Register(&Ridge{})
	gob.Register(&ElasticNet{})
	gob.Register(&KNeighbors{})
	gob.Register(&DecisionTree{})
	gob.Register(&Dummy{})
}
